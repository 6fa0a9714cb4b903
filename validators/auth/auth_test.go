package authValidator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckLogin(t *testing.T) {
	form, ok := CheckLogin(LoginForm{Email: " aluno@example.com ", Password: "segredo"})
	assert.True(t, ok)
	assert.Equal(t, "aluno@example.com", form.Email)

	_, ok = CheckLogin(LoginForm{Email: "aluno", Password: "segredo"})
	assert.False(t, ok)

	_, ok = CheckLogin(LoginForm{Email: "aluno@example.com", Password: "12345"})
	assert.False(t, ok)
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/curso/gestao?aula=1", SafeRedirect("/curso/gestao?aula=1"))
	assert.Equal(t, "/dashboard", SafeRedirect(""))
	assert.Equal(t, "/dashboard", SafeRedirect("//evil.example.com"))
	assert.Equal(t, "/dashboard", SafeRedirect("https://evil.example.com"))
	assert.Equal(t, "/dashboard", SafeRedirect(`/\evil.example.com`))
}
