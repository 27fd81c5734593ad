package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchDomain_Financial(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name    string
		text    string
		matches bool
	}{
		{"portuguese invoice", "Sua fatura de R$ 350,00 vence amanhã", true},
		{"pix transfer", "Recebi o pix de ontem, obrigado", true},
		{"english payment", "Your payment was approved", true},
		{"spanish charge", "El cobro fue aprobado en tu cuenta", true},
		{"currency amount only", "Valor: R$ 1.234,56", true},
		{"card number shape", "Final do cartão 1234 5678 9012 3456", true},
		{"plain chat", "Você viu o jogo ontem?", false},
		{"ted inside limited does not count", "limited seats available", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.MatchDomain(tt.text, DomainFinancial)
			if tt.matches {
				assert.NotEmpty(t, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestMatchDomain_Security(t *testing.T) {
	m := NewMatcher()

	tests := []struct {
		name    string
		text    string
		matches bool
	}{
		{"otp digits", "Seu código de verificação é 482913", true},
		{"english verify account", "Please verify your account before it expires in 24h", true},
		{"spanish password", "Tu contraseña expira en 2 días", true},
		{"action required", "Atenção: ação requerida na sua conta", true},
		{"casual message", "vamos almoçar amanhã?", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.MatchDomain(tt.text, DomainSecurity)
			if tt.matches {
				assert.NotEmpty(t, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestMatchDomain_Marketing(t *testing.T) {
	m := NewMatcher()

	got := m.MatchDomain("Promoção Black Friday! 50% de desconto, aproveite hoje", DomainMarketing)
	assert.GreaterOrEqual(t, len(got), 2, "promo copy should hit multiple marketing signals")
	assert.Contains(t, got, "promoção")
	assert.Contains(t, got, "desconto")

	got = m.MatchDomain("buy 2 get 1 today only, don't miss it", DomainMarketing)
	assert.GreaterOrEqual(t, len(got), 2)

	assert.Empty(t, m.MatchDomain("reunião confirmada para as 15h de quinta", DomainMarketing))
}

func TestMatch_AllDomains(t *testing.T) {
	m := NewMatcher()

	result := m.Match("Alerta: transferência de R$ 900,00 bloqueada, confirme sua senha")
	assert.NotEmpty(t, result[DomainFinancial])
	assert.NotEmpty(t, result[DomainSecurity])
	assert.Empty(t, result[DomainMarketing])

	assert.Empty(t, m.Match(""))
}

func TestMatch_Deterministic(t *testing.T) {
	m := NewMatcher()
	text := "Oferta exclusiva: pagamento com 30% de desconto, não perca"

	first := m.Match(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, m.Match(text))
	}
}

func TestMatchDomain_Deduplicates(t *testing.T) {
	m := NewMatcher()

	got := m.MatchDomain("pix pix pix", DomainFinancial)
	count := 0
	for _, hit := range got {
		if hit == "pix" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
