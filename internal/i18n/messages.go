package i18n

// Key identifies a translatable string.
type Key string

// =============================================================================
// Screens
// =============================================================================

const (
	AppName          Key = "appName"
	PriceEstimator   Key = "priceEstimator"
	SelectRegion     Key = "selectGovernorate"
	UploadTitle      Key = "uploadTitle"
	AnalyzingTitle   Key = "analyzingTitle"
	ResultsTitle     Key = "resultsTitle"
	ConditionLabel   Key = "condition"
	SuggestedPrice   Key = "suggestedPrice"
	PriceRange       Key = "priceRange"
	Lowest           Key = "lowest"
	Average          Key = "average"
	Highest          Key = "highest"
	SellingStrategy  Key = "sellingStrategy"
	SimilarListings  Key = "similarListings"
	SimilarSales     Key = "similarSales"
	PriceDistrib     Key = "priceDistribution"
	ConfidenceLabel  Key = "confidence"
	PricesIn         Key = "pricesIn"
	HistoryTitle     Key = "historyTitle"
	HistoryEmpty     Key = "historyEmpty"
	HistoryNoMatches Key = "historyNoMatches"
)

// =============================================================================
// Notices
// =============================================================================

const (
	ErrorTitle          Key = "errorTitle"
	TryAgain            Key = "tryAgain"
	NotSellableTitle    Key = "notSellableTitle"
	RateLimitedMsg      Key = "rateLimited"
	PaymentRequiredMsg  Key = "paymentRequired"
	MalformedMsg        Key = "malformedResponse"
	MissingImage        Key = "missingImage"
	MissingRegion       Key = "missingGovernorate"
	MissingCondition    Key = "missingCondition"
	InvalidYear         Key = "invalidYear"
	ValidationTitle     Key = "validationTitle"
	ConfidenceHigh      Key = "confidenceHigh"
	ConfidenceMedium    Key = "confidenceMedium"
	ConfidenceLow       Key = "confidenceLow"
	ResultWarningsTitle Key = "resultWarnings"
)

var translations = map[Language]map[Key]string{
	Arabic: {
		AppName:          "بلّه",
		PriceEstimator:   "مُقدّر الأسعار",
		SelectRegion:     "اختر المحافظة",
		UploadTitle:      "رفع صورة",
		AnalyzingTitle:   "جاري التحليل",
		ResultsTitle:     "النتيجة",
		ConditionLabel:   "الحالة",
		SuggestedPrice:   "السعر المقترح",
		PriceRange:       "نطاق الأسعار",
		Lowest:           "الأقل",
		Average:          "المتوسط",
		Highest:          "الأعلى",
		SellingStrategy:  "استراتيجية البيع",
		SimilarListings:  "إعلانات مشابهة",
		SimilarSales:     "مبيعات مشابهة",
		PriceDistrib:     "توزيع الأسعار في العراق",
		ConfidenceLabel:  "مستوى الثقة في التسعير",
		PricesIn:         "الأسعار بالدينار العراقي",
		HistoryTitle:     "السجل",
		HistoryEmpty:     "لا توجد تقييمات بعد",
		HistoryNoMatches: "لا توجد نتائج",

		ErrorTitle:          "صار خطأ",
		TryAgain:            "حاول مرة ثانية",
		NotSellableTitle:    "هذا الغرض لا يمكن تقييمه",
		RateLimitedMsg:      "طلبات كثيرة، حاول بعد قليل",
		PaymentRequiredMsg:  "الرصيد غير كافٍ لإكمال التحليل",
		MalformedMsg:        "وصل رد غير صالح من خدمة التحليل",
		MissingImage:        "أضف صورة للغرض أولاً",
		MissingRegion:       "اختر المحافظة أولاً",
		MissingCondition:    "اختر حالة الغرض أولاً",
		InvalidYear:         "سنة الشراء غير صحيحة",
		ValidationTitle:     "معلومات ناقصة",
		ConfidenceHigh:      "ثقة عالية - بيانات كافية من السوق العراقي",
		ConfidenceMedium:    "ثقة متوسطة - تقدير بناءً على منتجات مشابهة",
		ConfidenceLow:       "ثقة منخفضة - بيانات محدودة، السعر تقريبي",
		ResultWarningsTitle: "ملاحظات على النتيجة",
	},
	English: {
		AppName:          "BALLA",
		PriceEstimator:   "price estimator",
		SelectRegion:     "Select Governorate",
		UploadTitle:      "Upload Photo",
		AnalyzingTitle:   "Analyzing",
		ResultsTitle:     "Results",
		ConditionLabel:   "Condition",
		SuggestedPrice:   "Suggested Price",
		PriceRange:       "Price Range",
		Lowest:           "Lowest",
		Average:          "Average",
		Highest:          "Highest",
		SellingStrategy:  "Selling Strategy",
		SimilarListings:  "Similar Listings",
		SimilarSales:     "Similar Sales",
		PriceDistrib:     "Price Distribution in Iraq",
		ConfidenceLabel:  "Pricing Confidence",
		PricesIn:         "Prices in IQD",
		HistoryTitle:     "History",
		HistoryEmpty:     "No appraisals yet",
		HistoryNoMatches: "No results",

		ErrorTitle:          "Error Occurred",
		TryAgain:            "Try Again",
		NotSellableTitle:    "This item cannot be evaluated",
		RateLimitedMsg:      "Too many requests, please try again shortly",
		PaymentRequiredMsg:  "Out of credits, the analysis could not run",
		MalformedMsg:        "The analysis service returned an invalid response",
		MissingImage:        "Add a photo of the item first",
		MissingRegion:       "Select a governorate first",
		MissingCondition:    "Select the item condition first",
		InvalidYear:         "Invalid purchase year",
		ValidationTitle:     "Missing information",
		ConfidenceHigh:      "High confidence - enough Iraqi market data",
		ConfidenceMedium:    "Medium confidence - estimated from similar products",
		ConfidenceLow:       "Low confidence - limited data, the price is approximate",
		ResultWarningsTitle: "Notes on this result",
	},
}
