package stylesheet

// Exported wrappers around unexported internals, for black-box tests in
// package stylesheet_test. Conventional _test.go-only bridge; carries no
// behavior of its own.

func SplitDeclarationForTest(s string) (prop, value string, ok bool) {
	return splitDeclaration(s)
}

func SplitSelectorListForTest(s string) []string {
	return splitSelectorList(s)
}

func SqueezeWhitespaceForTest(s string) string {
	return squeezeWhitespace(s)
}

func StripCommentsForTest(s string) string {
	return stripComments(s)
}

func NormalizeSelectorForTest(s string) string {
	return normalizeSelector(s)
}

func ExtractParentSelectorForTest(s string) string {
	return extractParentSelector(s)
}

func RightmostTokenForTest(s string) string {
	return rightmostToken(s)
}

func NormalizeValueForTest(s string) string {
	return normalizeValue(s)
}

func IsVendorPrefixedForTest(property string) bool {
	return isVendorPrefixed(property)
}

func NewTokenResolverForTest(raw map[string]string) *tokenResolver {
	return newTokenResolver(raw)
}

func (tr *tokenResolver) ResolveForTest(property, name, fallback string, hasFallback bool) ([]Dependency, []Warning) {
	return tr.resolve(property, name, fallback, hasFallback)
}

func AssignRuleIDForTest(selector string, used map[string]bool) string {
	return assignRuleID(selector, used)
}
