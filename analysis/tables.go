package analysis

// Predefined component names and the @odata.type used when the component is
// declared with options on an index. An empty type means the component is
// built in and can only be referenced by name.

var predefinedAnalyzers = map[string]string{
	"keyword":                     "",
	"pattern":                     "#Microsoft.Azure.Search.PatternAnalyzer",
	"simple":                      "",
	"standard":                    "#Microsoft.Azure.Search.StandardAnalyzer",
	"standardasciifolding.lucene": "",
	"stop":                        "#Microsoft.Azure.Search.StopAnalyzer",
	"whitespace":                  "",
}

var predefinedCharFilters = map[string]string{
	"html_strip":      "",
	"mapping":         "#Microsoft.Azure.Search.MappingCharFilter",
	"pattern_replace": "#Microsoft.Azure.Search.PatternReplaceCharFilter",
}

var predefinedTokenizers = map[string]string{
	"classic":                               "#Microsoft.Azure.Search.ClassicTokenizer",
	"edgeNGram":                             "#Microsoft.Azure.Search.EdgeNGramTokenizer",
	"keyword_v2":                            "#Microsoft.Azure.Search.KeywordTokenizerV2",
	"letter":                                "",
	"lowercase":                             "",
	"microsoft_language_tokenizer":          "#Microsoft.Azure.Search.MicrosoftLanguageTokenizer",
	"microsoft_language_stemming_tokenizer": "#Microsoft.Azure.Search.MicrosoftLanguageStemmingTokenizer",
	"ngram":                                 "#Microsoft.Azure.Search.NGramTokenizer",
	"path_hierarchy_v2":                     "#Microsoft.Azure.Search.PathHierarchyTokenizerV2",
	"pattern":                               "#Microsoft.Azure.Search.PatternTokenizer",
	"standard_v2":                           "#Microsoft.Azure.Search.StandardTokenizerV2",
	"uax_url_email":                         "#Microsoft.Azure.Search.UaxUrlEmailTokenizer",
	"whitespace":                            "",
}

var predefinedTokenFilters = map[string]string{
	"arabic_normalization":       "",
	"apostrophe":                 "",
	"asciifolding":               "#Microsoft.Azure.Search.AsciiFoldingTokenFilter",
	"cjk_bigram":                 "#Microsoft.Azure.Search.CjkBigramTokenFilter",
	"cjk_width":                  "",
	"classic":                    "",
	"common_grams":               "#Microsoft.Azure.Search.CommonGramTokenFilter",
	"dictionary_decompounder":    "#Microsoft.Azure.Search.DictionaryDecompounderTokenFilter",
	"edgeNGram_v2":               "#Microsoft.Azure.Search.EdgeNGramTokenFilterV2",
	"elision":                    "#Microsoft.Azure.Search.ElisionTokenFilter",
	"german_normalization":       "",
	"hindi_normalization":        "",
	"indic_normalization":        "#Microsoft.Azure.Search.IndicNormalizationTokenFilter",
	"keep":                       "#Microsoft.Azure.Search.KeepTokenFilter",
	"keyword_marker":             "#Microsoft.Azure.Search.KeywordMarkerTokenFilter",
	"keyword_repeat":             "",
	"kstem":                      "",
	"length":                     "#Microsoft.Azure.Search.LengthTokenFilter",
	"limit":                      "#Microsoft.Azure.Search.LimitTokenFilter",
	"lowercase":                  "",
	"nGram_v2":                   "#Microsoft.Azure.Search.NGramTokenFilterV2",
	"pattern_capture":            "#Microsoft.Azure.Search.PatternCaptureTokenFilter",
	"pattern_replace":            "#Microsoft.Azure.Search.PatternReplaceTokenFilter",
	"persian_normalization":      "",
	"phonetic":                   "#Microsoft.Azure.Search.PhoneticTokenFilter",
	"porter_stem":                "",
	"reverse":                    "",
	"scandinavian_normalization": "",
	"scandinavian_folding":       "",
	"shingle":                    "#Microsoft.Azure.Search.ShingleTokenFilter",
	"snowball":                   "#Microsoft.Azure.Search.SnowballTokenFilter",
	"sorani_normalization":       "#Microsoft.Azure.Search.SoraniNormalizationTokenFilter",
	"stemmer":                    "#Microsoft.Azure.Search.StemmerTokenFilter",
	"stemmer_override":           "#Microsoft.Azure.Search.StemmerOverrideTokenFilter",
	"stopwords":                  "#Microsoft.Azure.Search.StopwordsTokenFilter",
	"synonym":                    "#Microsoft.Azure.Search.SynonymTokenFilter",
	"trim":                       "",
	"truncate":                   "#Microsoft.Azure.Search.TruncateTokenFilter",
	"unique":                     "#Microsoft.Azure.Search.UniqueTokenFilter",
	"uppercase":                  "",
	"word_delimiter":             "#Microsoft.Azure.Search.WordDelimiterTokenFilter",
}
