package domain

import "strings"

// Canonical bank names used for limit tracking.
const (
	BankNBKAirport = "الوطني - فرع المطار"
	BankNBK        = "الوطني"
	BankKFH        = "بيت التمويل"
	BankGulf       = "الخليج"
	BankBurgan     = "برقان"
)

// guaranteeNoExceptions pins individual guarantee numbers whose bank cannot be inferred.
var guaranteeNoExceptions = map[string]string{
	"B299015": BankNBKAirport,
}

type bankRule struct {
	bank     string
	keywords []string
}

// Free-text rules in priority order. Keywords are matched after normalizeText.
var (
	airportKeywords = []string{"مطار", "airport"}

	nbkRule = bankRule{BankNBK, []string{"الوطني", "nbk", "national bank"}}

	textRules = []bankRule{
		nbkRule,
		{BankKFH, []string{"بيت التمويل", "kfh", "kuwait finance house", "finance house"}},
		{BankGulf, []string{"الخليج", "gulf", "gbk"}},
		{BankBurgan, []string{"برقان", "burgan"}},
	}
)

// Guarantee number markers in priority order, matched on NormalizeGuaranteeNo output.
var markerRules = []bankRule{
	{BankNBKAirport, []string{"NBKAP", "APT"}},
	{BankNBK, []string{"NBK"}},
	{BankKFH, []string{"KFH"}},
	{BankGulf, []string{"GB"}},
	{BankBurgan, []string{"BRG"}},
}

var digitReplacer = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
)

var letterReplacer = strings.NewReplacer(
	"أ", "ا", "إ", "ا", "آ", "ا",
	"ة", "ه",
	"ى", "ي",
)

// TranslateDigits converts Arabic-Indic and Persian digits to ASCII.
func TranslateDigits(s string) string {
	return digitReplacer.Replace(s)
}

// NormalizeArabic folds the alef, teh marbuta and alef maksura variants.
func NormalizeArabic(s string) string {
	return letterReplacer.Replace(s)
}

// NormalizeGuaranteeNo uppercases a guarantee number, converts its digits
// to ASCII and strips spaces, hyphens and slashes.
func NormalizeGuaranteeNo(s string) string {
	s = strings.ToUpper(TranslateDigits(s))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '/', '\\':
			return -1
		}
		return r
	}, s)
}

// NormalizeBank resolves the canonical bank of a guarantee from its number
// and the free-text bank field. Earlier rules always win:
// literal number exceptions, free-text keywords, number markers and
// finally the B/M letter heuristic. Without a match the trimmed free
// text is returned.
func NormalizeBank(gNo, bank string) string {
	no := NormalizeGuaranteeNo(gNo)

	if canonical, ok := guaranteeNoExceptions[no]; ok {
		return canonical
	}
	if canonical, ok := matchBankText(bank); ok {
		return canonical
	}
	for _, rule := range markerRules {
		if containsAny(no, rule.keywords) {
			return rule.bank
		}
	}
	if strings.ContainsAny(no, "BM") {
		return BankNBK
	}
	return strings.TrimSpace(bank)
}

// NormalizeBankName applies only the free-text rules, for names that have
// no guarantee number such as configured limits.
func NormalizeBankName(name string) string {
	if canonical, ok := matchBankText(name); ok {
		return canonical
	}
	return strings.TrimSpace(name)
}

func matchBankText(bank string) (string, bool) {
	text := normalizeText(bank)
	if text == "" {
		return "", false
	}

	// the airport branch name contains the parent bank name
	if containsAny(text, nbkRule.keywords) && containsAny(text, airportKeywords) {
		return BankNBKAirport, true
	}
	for _, rule := range textRules {
		if containsAny(text, rule.keywords) {
			return rule.bank, true
		}
	}
	return "", false
}

func normalizeText(s string) string {
	s = strings.ToLower(NormalizeArabic(strings.TrimSpace(s)))
	return strings.Join(strings.Fields(s), " ")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
