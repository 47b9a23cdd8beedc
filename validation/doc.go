// Package validation validates configuration structs.
//
// Struct tags are checked with go-playground/validator; cross-field rules
// are collected with a Validator. Both report a KindValidation error.
//
//	type Config struct {
//	    BaseURL string `yaml:"base_url" validate:"omitempty,url"`
//	}
//	err := validation.Struct(cfg)
//
//	v := validation.New()
//	v.Custom(cert == "" || key != "", "tls.key_file", "is required with cert_file")
//	err := v.Err()
package validation
