package logs

import (
	"sync"

	"github.com/goliatone/go-masker"
)

var defaultMaskerOnce sync.Once

// DefaultMasker returns a configured masker instance with the default denylist.
func DefaultMasker() *masker.Masker {
	defaultMaskerOnce.Do(func() {
		if masker.Default == nil {
			return
		}
		registerDefaultMaskFields(masker.Default)
	})
	return masker.Default
}

// SanitizeParams masks sensitive values in captured request params or extra
// payloads before they are serialized into a record. A masking failure drops
// the payload rather than leaking it.
func SanitizeParams(mask *masker.Masker, params map[string]any) map[string]any {
	if len(params) == 0 {
		return params
	}
	if mask == nil {
		mask = DefaultMasker()
	}
	if mask == nil {
		return map[string]any{}
	}

	masked, err := mask.Mask(cloneParams(params))
	if err != nil {
		return map[string]any{}
	}
	switch masked := masked.(type) {
	case map[string]any:
		return masked
	default:
		return map[string]any{}
	}
}

func registerDefaultMaskFields(mask *masker.Masker) {
	if mask == nil {
		return
	}
	mask.RegisterMaskField("secret", "filled4")
	mask.RegisterMaskField("token", "filled4")
	mask.RegisterMaskField("csrfmiddlewaretoken", "filled4")
}

func cloneParams(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
