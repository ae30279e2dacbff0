// Package rewrite applies design-system substitutions to Swift sources:
// raw colors, fonts, spacing, and duplicated string literals are replaced
// with their AppTheme and AppStrings equivalents.
package rewrite
