package sanitize

import "github.com/feedstash/feedstash/app/syndication"

// Feed cleans every string field of a parsed feed document in place. After
// this, no field carries escaped-markup wrappers or raw tag syntax.
func Feed(doc *syndication.Document) {
	doc.Title = CleanText(doc.Title)
	doc.SiteURL = CleanText(doc.SiteURL)
	doc.Description = CleanText(doc.Description)

	for i := range doc.Items {
		item := &doc.Items[i]
		item.Title = CleanText(item.Title)
		item.Link = CleanText(item.Link)
		item.Published = CleanText(item.Published)
		item.Summary = CleanText(item.Summary)
		item.GUID = CleanText(item.GUID)
		for key, value := range item.Extra {
			item.Extra[key] = CleanText(value)
		}
	}
}
