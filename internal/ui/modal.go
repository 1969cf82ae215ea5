package ui

import (
	"strconv"

	"golang.org/x/net/html"

	"herbar/client/internal/dom"
)

type ModalProps struct {
	Open       bool
	Current    Card
	Previous   Card
	Next       Card
	Detail     Detail
	CopyStatus string
}

// Modal is the record detail view.
type Modal struct{ base }

func NewModal(doc *dom.Document) (*Modal, error) {
	b, err := mount(doc, "modal")
	return &Modal{b}, err
}

func (c *Modal) Render(props any) error {
	p, ok := props.(ModalProps)
	if !ok {
		return propsError("modal", props)
	}
	if !c.begin(p) {
		return nil
	}
	c.el.SetHidden(!p.Open)
	if !p.Open {
		c.el.Replace()
		return nil
	}
	c.el.SetAttr("data-id", strconv.Itoa(p.Current.ID))

	nodes := []*html.Node{
		dom.H("h2", nil, dom.T(p.Current.Name)),
		dom.H("p", dom.A("class", "scientific"), dom.T(p.Current.ScientificName)),
	}
	if p.Detail.CareGuide != "" {
		nodes = append(nodes, section("Ghid de ingrijire", dom.H("p", nil, dom.T(p.Detail.CareGuide))))
	}
	if p.Detail.SeasonalCare != "" {
		nodes = append(nodes, section("Ingrijire sezoniera", dom.H("p", nil, dom.T(p.Detail.SeasonalCare))))
	}
	if len(p.Detail.Classification) > 0 {
		dl := dom.H("dl", nil)
		for _, kv := range p.Detail.Classification {
			dl.AppendChild(dom.H("dt", nil, dom.T(kv.Key)))
			dl.AppendChild(dom.H("dd", nil, dom.T(kv.Value)))
		}
		nodes = append(nodes, section("Clasificare", dl))
	}
	if len(p.Detail.Pests) > 0 {
		nodes = append(nodes, section("Daunatori", list(p.Detail.Pests)))
	}
	if len(p.Detail.QuickFacts) > 0 {
		nodes = append(nodes, section("Pe scurt", list(p.Detail.QuickFacts)))
	}

	navAttrs := dom.A("class", "modal-nav")
	if p.Previous.ID == p.Current.ID && p.Next.ID == p.Current.ID {
		navAttrs = append(navAttrs, html.Attribute{Key: "data-disabled", Val: "true"})
	}
	nodes = append(nodes,
		dom.H("nav", navAttrs,
			dom.H("button", dom.A("data-action", "modal:prev", "data-target", strconv.Itoa(p.Previous.ID)), dom.T(p.Previous.Name)),
			dom.H("button", dom.A("data-action", "modal:next", "data-target", strconv.Itoa(p.Next.ID)), dom.T(p.Next.Name)),
		),
		dom.H("button", dom.A("data-action", "modal:copy", "data-status", p.CopyStatus), dom.T(copyLabel(p.CopyStatus))),
	)
	c.el.Replace(nodes...)
	return nil
}

func section(title string, body *html.Node) *html.Node {
	return dom.H("section", nil, dom.H("h3", nil, dom.T(title)), body)
}

func list(items []string) *html.Node {
	ul := dom.H("ul", nil)
	for _, it := range items {
		ul.AppendChild(dom.H("li", nil, dom.T(it)))
	}
	return ul
}

func copyLabel(status string) string {
	switch status {
	case "success":
		return "Link copiat"
	case "error":
		return "Copiere esuata"
	default:
		return "Copiaza link"
	}
}
