// internal/classifier/patterns.go
package classifier

import (
	"regexp"

	"github.com/verakocha/veriflow/pkg/types"
)

// nameMatchConfidence is the flat confidence for any column-name match.
const nameMatchConfidence = 0.7

// namePattern ties a semantic type to a column-name regex. Tokens are
// bilingual (English/Turkish) since uploads come from both locales.
type namePattern struct {
	semantic types.SemanticType
	pattern  *regexp.Regexp
}

// namePatterns is evaluated in order; the first match wins so results
// are deterministic when several patterns would fire.
var namePatterns = []namePattern{
	{types.SemanticDatetime, regexp.MustCompile(`(?i)(datetime|timestamp|created_at|updated_at)`)},
	{types.SemanticDate, regexp.MustCompile(`(?i)(date|tarih|^day$|gün)`)},
	{types.SemanticTime, regexp.MustCompile(`(?i)(^time$|saat)`)},
	{types.SemanticYear, regexp.MustCompile(`(?i)(year|yıl)`)},
	{types.SemanticMonth, regexp.MustCompile(`(?i)(month|^ay$)`)},
	{types.SemanticQuarter, regexp.MustCompile(`(?i)(quarter|çeyrek)`)},
	{types.SemanticCurrency, regexp.MustCompile(`(?i)(currency|döviz|para_?birimi)`)},
	{types.SemanticPercentage, regexp.MustCompile(`(?i)(percent|yüzde|oran|_rate$)`)},
	{types.SemanticRevenue, regexp.MustCompile(`(?i)(revenue|gelir|ciro|satış|sales)`)},
	{types.SemanticCost, regexp.MustCompile(`(?i)(cost|maliyet|gider|expense)`)},
	{types.SemanticPrice, regexp.MustCompile(`(?i)(price|fiyat|tutar|ücret|amount)`)},
	{types.SemanticRating, regexp.MustCompile(`(?i)(rating|puan|değerlendirme|stars?)`)},
	{types.SemanticScore, regexp.MustCompile(`(?i)(score|skor)`)},
	{types.SemanticQuantity, regexp.MustCompile(`(?i)(quantity|miktar|adet|qty)`)},
	{types.SemanticCount, regexp.MustCompile(`(?i)(count|sayı|_num$|num_)`)},
	{types.SemanticUserID, regexp.MustCompile(`(?i)(user_?id|customer_?id|kullanıcı|müşteri_?no)`)},
	{types.SemanticSessionID, regexp.MustCompile(`(?i)(session_?id|oturum)`)},
	{types.SemanticEmail, regexp.MustCompile(`(?i)(e-?mail|e-?posta)`)},
	{types.SemanticPhone, regexp.MustCompile(`(?i)(phone|telefon|^tel$|gsm)`)},
	{types.SemanticCountry, regexp.MustCompile(`(?i)(country|ülke)`)},
	{types.SemanticCity, regexp.MustCompile(`(?i)(city|şehir|^il$)`)},
	{types.SemanticURL, regexp.MustCompile(`(?i)(url|link|website|web_?site)`)},
	{types.SemanticIPAddress, regexp.MustCompile(`(?i)(ip_?add?ress|^ip$)`)},
	{types.SemanticDevice, regexp.MustCompile(`(?i)(device|cihaz)`)},
	{types.SemanticBrowser, regexp.MustCompile(`(?i)(browser|tarayıcı)`)},
	{types.SemanticOS, regexp.MustCompile(`(?i)(^os$|operating_?system|işletim|platform)`)},
	{types.SemanticAppVersion, regexp.MustCompile(`(?i)(app_?version|versiyon|sürüm|version)`)},
	{types.SemanticStatus, regexp.MustCompile(`(?i)(status|durum|state)`)},
	{types.SemanticCategory, regexp.MustCompile(`(?i)(category|kategori|^tür$|^type$)`)},
	{types.SemanticBoolean, regexp.MustCompile(`(?i)(^is_|^has_|active|aktif|enabled)`)},
}

// Value-shape detection thresholds
const (
	valueMatchThreshold = 0.8
	phoneMatchThreshold = 0.7

	identifierUniqueRatio  = 0.95
	identifierMinLength    = 5
	categoryUniqueRatio    = 0.10
	categoryMinSamples     = 10
	keywordMatchThreshold  = 0.5
	keywordConfidence      = 0.6
	identifierConfidence   = 0.5
	lowCardinalityConfid   = 0.6
)

var (
	emailValuePattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	urlValuePattern   = regexp.MustCompile(`^https?://\S+$`)
	ipValuePattern    = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
	phoneValuePattern = regexp.MustCompile(`^\+?[\d\s\-().]{7,20}$`)
)

// keywordGroups map lowercase substrings to the semantic type they
// indicate. Only consulted while the column is still unknown.
var keywordGroups = []struct {
	semantic types.SemanticType
	tokens   []string
}{
	{types.SemanticBrowser, []string{"chrome", "firefox", "safari", "edge", "opera"}},
	{types.SemanticOS, []string{"windows", "macos", "linux", "android", "ios"}},
	{types.SemanticDevice, []string{"mobile", "desktop", "tablet", "iphone", "ipad"}},
}
