package grabyconfig

import "errors"

// Validate performs minimal schema validation (spec §6).
func Validate(cfg Config) error {
	if cfg.HTTPClient.MaxAttempts < 1 {
		return errors.New("config: httpClient.maxAttempts must be at least 1")
	}
	if cfg.HTTPClient.MaxConcurrent < 0 {
		return errors.New("config: httpClient.maxConcurrent must not be negative")
	}
	switch cfg.ContentLinks {
	case ContentLinksPreserve, ContentLinksFootnotes, ContentLinksRemove:
	default:
		return errors.New("config: contentLinks must be one of preserve|footnotes|remove")
	}
	for mime, entry := range cfg.ContentTypeExc {
		if entry.Action != "link" && entry.Action != "exclude" {
			return errors.New("config: contentTypeExc[" + mime + "].action must be link or exclude")
		}
	}
	return nil
}
