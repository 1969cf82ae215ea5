package ui

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"

	"herbar/client/internal/dom"
)

type SearchProps struct {
	Query string
}

type Search struct{ base }

func NewSearch(doc *dom.Document) (*Search, error) {
	b, err := mount(doc, "search")
	return &Search{b}, err
}

func (c *Search) Render(props any) error {
	p, ok := props.(SearchProps)
	if !ok {
		return propsError("search", props)
	}
	if c.begin(p) {
		c.el.SetAttr("value", p.Query)
	}
	return nil
}

type SortProps struct {
	Selected string
	Options  []Option
}

type Sort struct{ base }

func NewSort(doc *dom.Document) (*Sort, error) {
	b, err := mount(doc, "sort")
	return &Sort{b}, err
}

func (c *Sort) Render(props any) error {
	p, ok := props.(SortProps)
	if !ok {
		return propsError("sort", props)
	}
	if !c.begin(p) {
		return nil
	}
	nodes := make([]*html.Node, 0, len(p.Options))
	for _, o := range p.Options {
		attrs := dom.A("value", o.Value)
		if o.Value == p.Selected {
			attrs = append(attrs, html.Attribute{Key: "selected"})
		}
		nodes = append(nodes, dom.H("option", attrs, dom.T(o.Label)))
	}
	c.el.Replace(nodes...)
	return nil
}

type TagsProps struct {
	All    []string
	Active []string
}

type Tags struct{ base }

func NewTags(doc *dom.Document) (*Tags, error) {
	b, err := mount(doc, "tags")
	return &Tags{b}, err
}

func (c *Tags) Render(props any) error {
	p, ok := props.(TagsProps)
	if !ok {
		return propsError("tags", props)
	}
	if !c.begin(p) {
		return nil
	}
	active := make(map[string]bool, len(p.Active))
	for _, t := range p.Active {
		active[t] = true
	}
	nodes := make([]*html.Node, 0, len(p.All)+1)
	for _, t := range p.All {
		nodes = append(nodes, dom.H("button",
			dom.A("type", "button", "data-tag", t, "aria-pressed", strconv.FormatBool(active[t])),
			dom.T(t)))
	}
	if len(p.Active) > 0 {
		nodes = append(nodes, dom.H("button", dom.A("type", "button", "data-action", "filters:clear"), dom.T("Sterge filtrele")))
	}
	c.el.Replace(nodes...)
	return nil
}

type GridProps struct {
	Cards       []Card
	Loading     bool
	Error       string
	Query       string
	Suggestions []string
}

type Grid struct{ base }

func NewGrid(doc *dom.Document) (*Grid, error) {
	b, err := mount(doc, "grid")
	return &Grid{b}, err
}

func (c *Grid) Render(props any) error {
	p, ok := props.(GridProps)
	if !ok {
		return propsError("grid", props)
	}
	if !c.begin(p) {
		return nil
	}
	c.el.SetAttr("aria-busy", strconv.FormatBool(p.Loading))
	switch {
	case p.Error != "":
		c.el.Replace(dom.H("p", dom.A("class", "grid-error"), dom.T(p.Error)))
	case p.Loading:
		c.el.Replace(dom.H("p", dom.A("class", "grid-loading"), dom.T("Se incarca plantele...")))
	case len(p.Cards) == 0:
		c.el.Replace(emptyState(p.Query, p.Suggestions)...)
	default:
		nodes := make([]*html.Node, 0, len(p.Cards))
		for _, card := range p.Cards {
			nodes = append(nodes, cardNode(card))
		}
		c.el.Replace(nodes...)
	}
	return nil
}

func emptyState(query string, suggestions []string) []*html.Node {
	nodes := []*html.Node{dom.H("p", dom.A("class", "grid-empty"), dom.T("Nicio planta nu corespunde filtrelor."))}
	if query != "" && len(suggestions) > 0 {
		list := dom.H("ul", dom.A("class", "suggestions"))
		for _, s := range suggestions {
			list.AppendChild(dom.H("li", nil, dom.T(s)))
		}
		nodes = append(nodes, dom.H("p", nil, dom.T("Poate ai cautat:")), list)
	}
	return nodes
}

func cardNode(card Card) *html.Node {
	tags := dom.H("ul", dom.A("class", "tags"))
	for _, t := range card.Tags {
		tags.AppendChild(dom.H("li", nil, dom.T(t)))
	}
	fav := "false"
	if card.Favorite {
		fav = "true"
	}
	return dom.H("article",
		dom.A("class", "card difficulty-"+card.DifficultyClass, "data-id", strconv.Itoa(card.ID), "data-favorite", fav),
		dom.H("h3", nil, dom.T(card.Name)),
		dom.H("p", dom.A("class", "scientific"), dom.T(card.ScientificName)),
		dom.H("p", dom.A("class", "category"), dom.T(card.Category)),
		dom.H("span", dom.A("class", "toxicity", "data-level", strconv.Itoa(card.Toxicity))),
		tags,
	)
}

type CountProps struct {
	Visible int
	Total   int
}

type Count struct{ base }

func NewCount(doc *dom.Document) (*Count, error) {
	b, err := mount(doc, "count")
	return &Count{b}, err
}

func (c *Count) Render(props any) error {
	p, ok := props.(CountProps)
	if !ok {
		return propsError("count", props)
	}
	if c.begin(p) {
		c.el.SetText(fmt.Sprintf("%d din %d plante", p.Visible, p.Total))
	}
	return nil
}

type FavoritesFilterProps struct {
	Only  bool
	Count int
}

type FavoritesFilter struct{ base }

func NewFavoritesFilter(doc *dom.Document) (*FavoritesFilter, error) {
	b, err := mount(doc, "favorites-filter")
	return &FavoritesFilter{b}, err
}

func (c *FavoritesFilter) Render(props any) error {
	p, ok := props.(FavoritesFilterProps)
	if !ok {
		return propsError("favorites-filter", props)
	}
	if c.begin(p) {
		c.el.SetAttr("aria-pressed", strconv.FormatBool(p.Only))
		c.el.SetText(fmt.Sprintf("Favorite (%d)", p.Count))
	}
	return nil
}

type QA struct {
	Question string
	Answer   string
}

type FAQProps struct {
	Open    bool
	Failed  bool
	Title   string
	Entries []QA
}

type FAQ struct{ base }

func NewFAQ(doc *dom.Document) (*FAQ, error) {
	b, err := mount(doc, "faq")
	return &FAQ{b}, err
}

func (c *FAQ) Render(props any) error {
	p, ok := props.(FAQProps)
	if !ok {
		return propsError("faq", props)
	}
	if !c.begin(p) {
		return nil
	}
	c.el.SetHidden(!p.Open)
	if p.Failed {
		c.el.Replace(dom.H("p", dom.A("class", "faq-error"), dom.T("Intrebarile frecvente nu au putut fi incarcate.")))
		return nil
	}
	nodes := []*html.Node{dom.H("h2", nil, dom.T(p.Title))}
	for _, e := range p.Entries {
		nodes = append(nodes, dom.H("details", nil,
			dom.H("summary", nil, dom.T(e.Question)),
			dom.H("p", nil, dom.T(e.Answer))))
	}
	c.el.Replace(nodes...)
	return nil
}

type NotificationItem struct {
	ID      string
	Class   string
	Message string
	Count   int
}

type NotificationsProps struct {
	Items []NotificationItem
}

type Notifications struct{ base }

func NewNotifications(doc *dom.Document) (*Notifications, error) {
	b, err := mount(doc, "notifications")
	return &Notifications{b}, err
}

func (c *Notifications) Render(props any) error {
	p, ok := props.(NotificationsProps)
	if !ok {
		return propsError("notifications", props)
	}
	if !c.begin(p) {
		return nil
	}
	nodes := make([]*html.Node, 0, len(p.Items))
	for _, it := range p.Items {
		text := it.Message
		if it.Count > 1 {
			text = fmt.Sprintf("%s (x%d)", it.Message, it.Count)
		}
		nodes = append(nodes, dom.H("div", dom.A("class", "notification "+it.Class, "data-id", it.ID, "role", "alert"), dom.T(text)))
	}
	c.el.Replace(nodes...)
	return nil
}
