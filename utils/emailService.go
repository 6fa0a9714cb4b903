package utils

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"campus/logger"
	"campus/models"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// LeadMailer emails the sales team about institutional leads through
// SendGrid. Without an API key or recipient it only logs.
type LeadMailer struct {
	key  string
	from *sgmail.Email
	to   *sgmail.Email
	log  *logger.Logger

	// send is swapped in tests.
	send func(m *sgmail.SGMailV3) error
}

func NewLeadMailer(apiKey, from, to string, log *logger.Logger) *LeadMailer {
	m := &LeadMailer{
		key: apiKey,
		log: log.With("mail"),
	}
	if from != "" {
		m.from = sgmail.NewEmail("Campus", from)
	}
	if to != "" {
		m.to = sgmail.NewEmail("Comercial", to)
	}
	m.send = m.deliver
	return m
}

func (m *LeadMailer) enabled() bool {
	return m.key != "" && m.from != nil && m.to != nil
}

// NotifyLead sends the notification in the background; failures are logged.
func (m *LeadMailer) NotifyLead(ctx context.Context, lead models.InstitutionalLead) {
	if !m.enabled() {
		m.log.Debug("Lead notification skipped, mail not configured", logger.Fields{"leadId": lead.ID})
		return
	}
	msg := m.leadMessage(lead)
	go func() {
		if err := m.send(msg); err != nil {
			m.log.Error("Failed to send lead notification", logger.Fields{"leadId": lead.ID}, err)
			return
		}
		m.log.Info("Lead notification sent", logger.Fields{"leadId": lead.ID})
	}()
}

func (m *LeadMailer) leadMessage(lead models.InstitutionalLead) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = "Novo lead institucional: " + lead.Organization
	p.AddTos(m.to)

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.SetReplyTo(sgmail.NewEmail(lead.ContactName, lead.Email))
	msg.AddContent(
		sgmail.NewContent("text/plain", leadText(lead)),
		sgmail.NewContent("text/html", leadHTML(lead)),
	)
	return msg
}

func (m *LeadMailer) deliver(msg *sgmail.SGMailV3) error {
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(msg)

	res, err := sendgrid.API(req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid answered %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func leadRows(lead models.InstitutionalLead) [][2]string {
	rows := [][2]string{
		{"Organização", lead.Organization},
		{"Contato", lead.ContactName},
		{"E-mail", lead.Email},
	}
	if lead.Phone != nil {
		rows = append(rows, [2]string{"Telefone", *lead.Phone})
	}
	if lead.Headcount != nil {
		rows = append(rows, [2]string{"Alunos", fmt.Sprint(*lead.Headcount)})
	}
	if lead.Message != nil {
		rows = append(rows, [2]string{"Mensagem", *lead.Message})
	}
	return rows
}

func leadText(lead models.InstitutionalLead) string {
	var b strings.Builder
	for _, row := range leadRows(lead) {
		fmt.Fprintf(&b, "%s: %s\n", row[0], row[1])
	}
	return b.String()
}

var leadTemplate = template.Must(template.New("lead").Parse(
	`<h2>Novo lead institucional</h2><ul>{{range .}}<li><strong>{{index . 0}}:</strong> {{index . 1}}</li>{{end}}</ul>`,
))

func leadHTML(lead models.InstitutionalLead) string {
	var b strings.Builder
	if err := leadTemplate.Execute(&b, leadRows(lead)); err != nil {
		return leadText(lead)
	}
	return b.String()
}
