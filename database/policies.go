package database

import "gorm.io/gorm"

const (
	// AuthenticatedRole is assumed by every request made on behalf of a signed-in user.
	AuthenticatedRole = "campus_authenticated"
	// AnonRole is assumed by requests without a session (lead capture).
	AnonRole = "campus_anon"
)

var policyStatements = []string{
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = 'campus_authenticated') THEN
			CREATE ROLE campus_authenticated NOLOGIN;
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = 'campus_anon') THEN
			CREATE ROLE campus_anon NOLOGIN;
		END IF;
	END $$`,
	`GRANT campus_authenticated TO CURRENT_USER`,
	`GRANT campus_anon TO CURRENT_USER`,

	`CREATE OR REPLACE FUNCTION campus_current_user() RETURNS text
		LANGUAGE sql STABLE AS $$ SELECT NULLIF(current_setting('app.user_id', true), '') $$`,
	`CREATE OR REPLACE FUNCTION campus_is_admin() RETURNS boolean
		LANGUAGE sql STABLE SECURITY DEFINER AS $$
			SELECT EXISTS (SELECT 1 FROM profiles WHERE id::text = campus_current_user() AND role = 'admin')
		$$`,

	`GRANT SELECT ON profiles, courses, modules, lessons, materials TO campus_authenticated`,
	`GRANT INSERT, UPDATE ON courses, modules, lessons, materials TO campus_authenticated`,
	`GRANT SELECT, INSERT, UPDATE ON lesson_progress TO campus_authenticated`,
	`GRANT INSERT ON institutional_leads TO campus_authenticated, campus_anon`,

	`ALTER TABLE profiles ENABLE ROW LEVEL SECURITY`,
	`ALTER TABLE courses ENABLE ROW LEVEL SECURITY`,
	`ALTER TABLE modules ENABLE ROW LEVEL SECURITY`,
	`ALTER TABLE lessons ENABLE ROW LEVEL SECURITY`,
	`ALTER TABLE materials ENABLE ROW LEVEL SECURITY`,
	`ALTER TABLE lesson_progress ENABLE ROW LEVEL SECURITY`,
	`ALTER TABLE institutional_leads ENABLE ROW LEVEL SECURITY`,

	`DROP POLICY IF EXISTS profiles_select_own ON profiles`,
	`CREATE POLICY profiles_select_own ON profiles FOR SELECT TO campus_authenticated
		USING (id::text = campus_current_user())`,
}

// content tables share the same shape: readable by signed-in users, writable by admins
var contentTables = []string{"courses", "modules", "lessons", "materials"}

func contentPolicies(table string) []string {
	return []string{
		`DROP POLICY IF EXISTS ` + table + `_select ON ` + table,
		`CREATE POLICY ` + table + `_select ON ` + table + ` FOR SELECT TO campus_authenticated USING (true)`,
		`DROP POLICY IF EXISTS ` + table + `_insert_admin ON ` + table,
		`CREATE POLICY ` + table + `_insert_admin ON ` + table + ` FOR INSERT TO campus_authenticated WITH CHECK (campus_is_admin())`,
		`DROP POLICY IF EXISTS ` + table + `_update_admin ON ` + table,
		`CREATE POLICY ` + table + `_update_admin ON ` + table + ` FOR UPDATE TO campus_authenticated USING (campus_is_admin()) WITH CHECK (campus_is_admin())`,
	}
}

var progressPolicies = []string{
	`DROP POLICY IF EXISTS lesson_progress_select_own ON lesson_progress`,
	`CREATE POLICY lesson_progress_select_own ON lesson_progress FOR SELECT TO campus_authenticated
		USING (user_id::text = campus_current_user())`,
	`DROP POLICY IF EXISTS lesson_progress_insert_own ON lesson_progress`,
	`CREATE POLICY lesson_progress_insert_own ON lesson_progress FOR INSERT TO campus_authenticated
		WITH CHECK (user_id::text = campus_current_user())`,
	`DROP POLICY IF EXISTS lesson_progress_update_own ON lesson_progress`,
	`CREATE POLICY lesson_progress_update_own ON lesson_progress FOR UPDATE TO campus_authenticated
		USING (user_id::text = campus_current_user()) WITH CHECK (user_id::text = campus_current_user())`,
	`DROP POLICY IF EXISTS institutional_leads_insert ON institutional_leads`,
	`CREATE POLICY institutional_leads_insert ON institutional_leads FOR INSERT TO campus_authenticated, campus_anon
		WITH CHECK (true)`,
}

func applyPolicies(db *gorm.DB) error {
	statements := append([]string{}, policyStatements...)
	for _, table := range contentTables {
		statements = append(statements, contentPolicies(table)...)
	}
	statements = append(statements, progressPolicies...)

	return db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range statements {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
