package page

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"stashbatch/internal/host"
)

// Selectors and labels that make up the host DOM contract. The tagger view
// renders entity pickers as input groups with a create affordance, and
// matched tags as badge containers with a link button. A host UI change
// breaks discovery silently: scans return empty results, never errors.
const (
	ContainerSelector = ".tagger-container"

	createGroupSelector  = ".tagger-container .input-group"
	placeholderSelector  = ".react-select__placeholder"
	createButtonSelector = "button.btn-primary"
	selectPlaceholder    = "Select..."
	createButtonLabel    = "Create"

	tagBadgeSelector   = ".tagger-container .tag-item"
	linkButtonSelector = "button.btn-add"

	modalConfirmSelector = ".modal.show .modal-footer button.btn-primary"

	missingButtonSelector = ".tagger-container button[title]"
)

// CreateAction references a pending create-entity click.
type CreateAction struct {
	Ref host.ElementRef
}

// TagLink pairs a link-button reference with the tag name extracted from its
// badge. Name is empty when no text node could be found.
type TagLink struct {
	Ref  host.ElementRef
	Name string
}

// MissingEntity references a host-rendered create affordance for an entity
// the catalog does not know yet. Kind is the entity kind named in the button
// title (performer, studio, tag) or empty when the title carries none.
type MissingEntity struct {
	Ref  host.ElementRef
	Kind string
	Name string
}

// Scan holds the actionable elements found in one snapshot, in DOM order.
type Scan struct {
	Creates []CreateAction
	Links   []TagLink
}

// Total returns the combined number of queued actions.
func (s *Scan) Total() int {
	if s == nil {
		return 0
	}
	return len(s.Creates) + len(s.Links)
}

// Parse builds a queryable document from snapshot HTML.
func Parse(snapshot *host.Page) (*goquery.Document, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("nil page snapshot")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snapshot.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse page snapshot: %w", err)
	}
	return doc, nil
}

// Ref derives a stable element reference from a scan selector and the match
// index within it. The browser shim resolves the pair against the live DOM.
func Ref(selector string, index int) host.ElementRef {
	return host.ElementRef(fmt.Sprintf("%s@%d", selector, index))
}

// Build scans the document for the two disjoint classes of actionable
// elements. Pure: no side effects, results follow DOM order.
func Build(doc *goquery.Document) *Scan {
	result := &Scan{}
	if doc == nil {
		return result
	}

	doc.Find(createGroupSelector).Each(func(i int, group *goquery.Selection) {
		placeholder := strings.TrimSpace(group.Find(placeholderSelector).First().Text())
		if placeholder != selectPlaceholder {
			return
		}
		group.Find(createButtonSelector).EachWithBreak(func(_ int, button *goquery.Selection) bool {
			if strings.TrimSpace(button.Text()) != createButtonLabel {
				return true
			}
			if buttonDisabled(button) {
				return true
			}
			ref := Ref(createGroupSelector+" "+createButtonSelector, createButtonIndex(doc, button))
			result.Creates = append(result.Creates, CreateAction{Ref: ref})
			return false
		})
	})

	doc.Find(tagBadgeSelector).Each(func(i int, badge *goquery.Selection) {
		button := badge.Find(linkButtonSelector).First()
		if button.Length() == 0 {
			return
		}
		result.Links = append(result.Links, TagLink{
			Ref:  Ref(tagBadgeSelector+" "+linkButtonSelector, i),
			Name: badgeText(badge),
		})
	})

	return result
}

// FindModalConfirm locates the save control inside an open modal.
func FindModalConfirm(doc *goquery.Document) (host.ElementRef, bool) {
	if doc == nil {
		return "", false
	}
	if doc.Find(modalConfirmSelector).Length() == 0 {
		return "", false
	}
	return Ref(modalConfirmSelector, 0), true
}

// FindMissingEntities collects create affordances the host renders for
// entities absent from the catalog, identified by a button title containing
// "create" (case-insensitive). The target name is the remainder of the title.
func FindMissingEntities(doc *goquery.Document) []MissingEntity {
	if doc == nil {
		return nil
	}
	var found []MissingEntity
	doc.Find(missingButtonSelector).Each(func(i int, button *goquery.Selection) {
		title, _ := button.Attr("title")
		lowered := strings.ToLower(title)
		idx := strings.Index(lowered, "create")
		if idx < 0 {
			return
		}
		kind, name := splitEntityTitle(strings.TrimSpace(title[idx+len("create"):]))
		found = append(found, MissingEntity{
			Ref:  Ref(missingButtonSelector, i),
			Kind: kind,
			Name: name,
		})
	})
	return found
}

// splitEntityTitle separates the entity kind from the quoted name in a
// create-button title remainder such as `performer 'Jane Doe'`.
func splitEntityTitle(rest string) (string, string) {
	kind := ""
	if word, tail, ok := strings.Cut(rest, " "); ok {
		switch strings.ToLower(word) {
		case "performer", "studio", "tag":
			kind = strings.ToLower(word)
			rest = tail
		}
	}
	name := strings.TrimSpace(rest)
	if len(name) >= 2 {
		if first, last := name[0], name[len(name)-1]; first == last && (first == '\'' || first == '"') {
			name = name[1 : len(name)-1]
		}
	}
	return kind, strings.TrimSpace(name)
}

// HasAnchor reports whether an element with the given visible text exists.
func HasAnchor(doc *goquery.Document, text string) bool {
	if doc == nil {
		return false
	}
	found := false
	doc.Find("button, a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.TrimSpace(sel.Text()) == text {
			found = true
			return false
		}
		return true
	})
	return found
}

// HasControl reports whether the injected control is already mounted.
func HasControl(doc *goquery.Document, id string) bool {
	if doc == nil || id == "" {
		return false
	}
	return doc.Find("#"+id).Length() > 0
}

// badgeText returns the badge's first non-empty direct text node. Text inside
// nested buttons is never considered: the name sits beside the button, not
// within it.
func badgeText(badge *goquery.Selection) string {
	var name string
	badge.Contents().EachWithBreak(func(_ int, node *goquery.Selection) bool {
		n := node.Get(0)
		if n == nil || n.Type != html.TextNode {
			return true
		}
		if text := strings.TrimSpace(n.Data); text != "" {
			name = text
			return false
		}
		return true
	})
	return name
}

func buttonDisabled(button *goquery.Selection) bool {
	if _, ok := button.Attr("disabled"); ok {
		return true
	}
	return button.HasClass("disabled")
}

// createButtonIndex finds the position of a matched create button among all
// create buttons in the document so its ref survives independent of which
// group it was found through.
func createButtonIndex(doc *goquery.Document, button *goquery.Selection) int {
	target := button.Get(0)
	index := -1
	doc.Find(createGroupSelector + " " + createButtonSelector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if sel.Get(0) == target {
			index = i
			return false
		}
		return true
	})
	return index
}
