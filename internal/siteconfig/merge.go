package siteconfig

// merge folds new into current per spec §4.2 "Merge semantics" and returns
// the result. current and new are never mutated.
func merge(current, new SiteConfig) SiteConfig {
	out := current

	out.Title = unionAppend(current.Title, new.Title)
	out.Body = unionAppend(current.Body, new.Body)
	out.Strip = unionAppend(current.Strip, new.Strip)
	out.StripIDOrClass = unionAppend(current.StripIDOrClass, new.StripIDOrClass)
	out.StripImageSrc = unionAppend(current.StripImageSrc, new.StripImageSrc)
	out.SinglePageLink = unionAppend(current.SinglePageLink, new.SinglePageLink)
	out.NextPageLink = unionAppend(current.NextPageLink, new.NextPageLink)
	out.HTTPHeader = unionAppend(current.HTTPHeader, new.HTTPHeader)

	// author, date, test_url are intentionally absent from spec's merge
	// list: they stay site-specific and are never inherited from the
	// config merged in (almost always the global config).
	out.Author = current.Author
	out.Date = current.Date
	out.TestURL = current.TestURL

	if !current.Tidy.Declared() {
		out.Tidy = new.Tidy
	}
	if !current.Prune.Declared() {
		out.Prune = new.Prune
	}
	if !current.AutodetectOnFailure.Declared() {
		out.AutodetectOnFailure = new.AutodetectOnFailure
	}
	if current.ParserName == ParserUnset {
		out.ParserName = new.ParserName
	}

	// find_string/replace_string: concatenation, no dedup, paired.
	out.FindString = append(append([]string{}, current.FindString...), new.FindString...)
	out.ReplaceString = append(append([]string{}, current.ReplaceString...), new.ReplaceString...)

	return out
}

// unionAppend appends items from b that are not already present in a,
// preserving first-seen order.
func unionAppend(a, b []string) []string {
	if len(b) == 0 {
		return append([]string{}, a...)
	}
	seen := make(map[string]struct{}, len(a))
	out := append([]string{}, a...)
	for _, v := range a {
		seen[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
