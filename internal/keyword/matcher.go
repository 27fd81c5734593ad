// Package keyword provides deterministic, multi-language term and pattern
// matching for the semantic domains the rule engine cares about. A Matcher
// is immutable after construction and safe for concurrent use.
package keyword

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Domain is a semantic domain with its own curated term set and structural
// patterns.
type Domain string

const (
	DomainFinancial Domain = "financial"
	DomainSecurity  Domain = "security"
	DomainMarketing Domain = "marketing"
)

// Domains lists all matchable domains in evaluation-relevant order.
var Domains = []Domain{DomainFinancial, DomainSecurity, DomainMarketing}

// Term sets cover PT-BR, EN and ES simultaneously; there is no runtime
// language detection, every set is checked against every message.
var financialTerms = []string{
	// banking
	"banco", "conta", "saldo", "transferência", "pix", "ted", "doc",
	"cartão", "crédito", "débito", "fatura", "boleto", "pagamento",
	"bank", "account", "balance", "transfer", "card", "credit", "debit",
	"invoice", "payment", "banking",
	"cuenta", "transferencia", "tarjeta", "factura", "pago", "pagos",
	// transactions
	"transação", "compra", "cobrança", "estorno", "aprovado", "negado",
	"pendente", "processando",
	"transaction", "purchase", "charge", "refund", "approved", "denied",
	"pending", "processing",
	"transacción", "cobro", "devolución", "aprobado", "pendiente", "procesando",
	// currency
	"r$", "brl", "usd", "euro", "€", "$", "¥", "£",
	"mxn", "ars", "clp", "cop", "eur",
	// fraud
	"fraude", "suspeito", "bloqueio", "bloqueado", "tentativa",
	"acesso não autorizado", "roubo", "furto",
	"fraud", "suspicious", "blocked", "unauthorized access", "theft",
	"sospechoso", "intento", "acceso no autorizado", "robo", "hurto",
}

var securityTerms = []string{
	// authentication
	"senha", "código", "autenticação", "verificação", "verificar",
	"confirmar", "confirmação", "token", "2fa", "otp",
	"password", "code", "authentication", "verification", "verify",
	"confirm", "confirmation",
	"contraseña", "autenticación", "verificación",
	// alerts
	"alerta", "aviso", "emergência", "urgente", "crítico",
	"atenção", "ação requerida", "ação necessária", "risco",
	"alert", "warning", "emergency", "urgent", "critical",
	"attention", "action required", "risk", "immediately",
	"advertencia", "emergencia", "crítico", "atención", "acción requerida", "riesgo",
	// expiration
	"expira", "expiração", "prazo", "prazo limite",
	"expires", "expiration", "deadline", "time limit",
	"expiración", "plazo", "límite de tiempo",
}

var marketingTerms = []string{
	// promotions
	"promoção", "oferta", "desconto", "newsletter",
	"campanha", "anúncio", "não perca", "black friday",
	"cyber monday", "liquidação", "cupom", "voucher", "grátis", "ganhe",
	"sorteio", "concurso", "cancelar inscrição", "sair da lista",
	"promotion", "offer", "discount", "campaign", "advertisement",
	"don't miss", "sale", "% off", "coupon", "free", "win", "raffle",
	"contest", "unsubscribe", "leave list",
	"promoción", "descuento", "boletín", "campaña", "anuncio",
	"no pierda", "viernes negro", "cyber lunes", "cupón", "bono",
	"gratis", "gane", "sorteo", "cancelar suscripción", "salir de la lista",
	// engagement
	"clique aqui", "saiba mais", "conheça", "exclusivo", "limitado",
	"apenas hoje", "enquanto durar", "acesse agora",
	"click here", "learn more", "exclusive", "limited",
	"today only", "while stocks last", "access now",
	"haz clic aquí", "aprende más", "solo hoy", "accede ahora",
}

var financialPatterns = []*regexp.Regexp{
	// currency amounts
	regexp.MustCompile(`(?i)[R$€£¥¢₹₽]\s*[\d.,]+`),
	regexp.MustCompile(`(?i)[\d.,]+\s*(?:reais|dólares|euros|pesos)`),
	// card number shapes
	regexp.MustCompile(`\b\d{4}\s*\d{4}\s*\d{4}\s*\d{4}\b`),
	regexp.MustCompile(`(?i)\bpix\b`),
	regexp.MustCompile(`(?i)\b(?:transferência|transfer|pago|pagamento)\s+(?:de|no valor|de\s*r\$)`),
	regexp.MustCompile(`(?i)\b(?:fatura|boleto|factura)\s+(?:vence|vencida)`),
	regexp.MustCompile(`(?i)\b(?:transfer|payment|invoice)\s+(?:of|in|amount)`),
	regexp.MustCompile(`(?i)\b(?:bill|receipt|balance)\s+(?:due|updated)`),
	regexp.MustCompile(`(?i)\b(?:transferencia|pago|factura)\s+(?:de|en|cantidad)`),
	regexp.MustCompile(`(?i)\b(?:recibo|saldo|cobro)\s+(?:vencido|actualizado)`),
}

var securityPatterns = []*regexp.Regexp{
	// OTP-length digit runs
	regexp.MustCompile(`\b\d{4,8}\b`),
	// token shapes
	regexp.MustCompile(`\b[A-Z0-9]{6,}\b`),
	regexp.MustCompile(`(?i)(?:senha|código|token|pin)[:=\s]\s*['"]?\w+['"]?`),
	regexp.MustCompile(`(?i)(?:password|code|pin)[:=\s]\s*['"]?\w+['"]?`),
	regexp.MustCompile(`(?i)(?:contraseña)[:=\s]\s*['"]?\w+['"]?`),
	// expiration phrases
	regexp.MustCompile(`(?i)\b(?:expira|vence)\s+(?:em|por|até|dentro)`),
	regexp.MustCompile(`(?i)\b(?:expires)\s+(?:in|by|on)`),
	regexp.MustCompile(`(?i)\b(?:expira|vence)\s+(?:en|hasta)`),
	// confirmation phrases
	regexp.MustCompile(`(?i)\b(?:confirme|verifique|acesse)\s+(?:sua|seu|a|o)\s+(?:senha|código|conta)`),
	regexp.MustCompile(`(?i)\b(?:confirm|verify|access)\s+(?:your|the)\s+(?:password|code|account)`),
	regexp.MustCompile(`(?i)\b(?:confirma|verifica|accede)\s+(?:su|tu|el|la)\s+(?:contraseña|código|cuenta)`),
}

var marketingPatterns = []*regexp.Regexp{
	// percentage discounts
	regexp.MustCompile(`(?i)\b\d+%\s*(?:OFF|DESC|DESCONTO|DESCUENTO|DE\s+DESC)`),
	regexp.MustCompile(`(?i)\b(?:até|por|com)\s+\d+%`),
	regexp.MustCompile(`(?i)\b(?:up\s+to|save|get)\s+\d+%`),
	regexp.MustCompile(`(?i)\b(?:hasta|ahorra|consigue)\s+\d+%`),
	// buy X get Y
	regexp.MustCompile(`(?i)\bcompre\s+\d+\s+leve\s+\d+\b`),
	regexp.MustCompile(`(?i)\bbuy\s+\d+\s+get\s+\d+\b`),
	regexp.MustCompile(`(?i)\bcompra\s+\d+\s+lleva\s+\d+\b`),
	// urgency-flavored promo phrasing
	regexp.MustCompile(`(?i)\b(?:não perca|aproveite|don't miss|take advantage|no pierda|aprovecha)\b`),
	regexp.MustCompile(`(?i)\b(?:apenas\s+hoje|today\s+only|solo\s+hoy|por\s+tempo|while\s+stocks|mientras)\b`),
}

// Matcher holds the compiled term sets and patterns for every domain.
type Matcher struct {
	terms    map[Domain][]string
	patterns map[Domain][]*regexp.Regexp
}

func NewMatcher() *Matcher {
	return &Matcher{
		terms: map[Domain][]string{
			DomainFinancial: financialTerms,
			DomainSecurity:  securityTerms,
			DomainMarketing: marketingTerms,
		},
		patterns: map[Domain][]*regexp.Regexp{
			DomainFinancial: financialPatterns,
			DomainSecurity:  securityPatterns,
			DomainMarketing: marketingPatterns,
		},
	}
}

// Match returns the matched terms and pattern hits per domain. Identical
// input always yields identical output.
func (m *Matcher) Match(text string) map[Domain][]string {
	result := make(map[Domain][]string, len(Domains))
	for _, domain := range Domains {
		if matches := m.MatchDomain(text, domain); len(matches) > 0 {
			result[domain] = matches
		}
	}
	return result
}

// MatchDomain returns the ordered, de-duplicated matches for one domain:
// term hits first, then structural pattern hits.
func (m *Matcher) MatchDomain(text string, domain Domain) []string {
	if text == "" {
		return nil
	}

	textLower := strings.ToLower(text)

	var matched []string
	seen := make(map[string]bool)

	for _, term := range m.terms[domain] {
		if containsTerm(textLower, term) && !seen[term] {
			seen[term] = true
			matched = append(matched, term)
		}
	}

	for _, pattern := range m.patterns[domain] {
		for _, hit := range pattern.FindAllString(text, -1) {
			if !seen[hit] {
				seen[hit] = true
				matched = append(matched, hit)
			}
		}
	}

	return matched
}

// containsTerm reports whether term occurs in textLower on word boundaries.
// Substring matching alone is too eager for short terms ("ted" would match
// inside "limited"), so occurrences flanked by letters or digits don't
// count. Terms that start or end with symbols (currency signs) keep plain
// substring semantics.
func containsTerm(textLower, term string) bool {
	termLower := strings.ToLower(term)

	from := 0
	for {
		idx := strings.Index(textLower[from:], termLower)
		if idx < 0 {
			return false
		}
		idx += from

		if boundaryBefore(textLower, idx, termLower) && boundaryAfter(textLower, idx, termLower) {
			return true
		}
		from = idx + len(termLower)
		if from >= len(textLower) {
			return false
		}
	}
}

func boundaryBefore(text string, idx int, term string) bool {
	first, _ := utf8.DecodeRuneInString(term)
	if !isWordRune(first) {
		return true
	}
	if idx == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:idx])
	return !isWordRune(prev)
}

func boundaryAfter(text string, idx int, term string) bool {
	last, _ := utf8.DecodeLastRuneInString(term)
	if !isWordRune(last) {
		return true
	}
	end := idx + len(term)
	if end >= len(text) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(next)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
