// Package validation validates values and configuration structs, reporting
// problems as structured validation errors. Struct validation uses
// go-playground/validator tags; the fluent Validator collects field-level
// checks for values that do not live in a tagged struct.
package validation
