// Package notion speaks the subset of the Notion REST API the bridge needs:
// pages, database queries, block children and comments.
package notion

import (
	"strings"
	"time"
)

// Property names on the task board.
const (
	PropertyTitle  = "title" // Title property id, valid for create and update
	PropertyName   = "Name"  // Title property name, used in filters
	PropertyAssign = "Assign"
	PropertyStatus = "Status"
)

// Task statuses.
const (
	StatusQueued  = "Queued"
	StatusRunning = "Running"
	StatusDone    = "Done"
	StatusIssue   = "Issue"
)

// Block types.
const (
	BlockHeading2         = "heading_2"
	BlockParagraph        = "paragraph"
	BlockBulletedListItem = "bulleted_list_item"
	BlockToDo             = "to_do"
)

// PageURL returns the public URL of a page id.
func PageURL(id string) string {
	return "https://www.notion.so/" + id
}

// CompactID strips dashes from a Notion id.
func CompactID(id string) string {
	return strings.ReplaceAll(id, "-", "")
}

// SameID compares two ids ignoring dashes.
func SameID(a, b string) bool {
	return a != "" && CompactID(a) == CompactID(b)
}

// Link is a rich text hyperlink.
type Link struct {
	URL string `json:"url"`
}

// Text is the content of a text rich text segment.
type Text struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// RichText is one segment of formatted text.
type RichText struct {
	Type      string `json:"type,omitempty"`
	Text      *Text  `json:"text,omitempty"`
	PlainText string `json:"plain_text,omitempty"`
	Href      string `json:"href,omitempty"`
}

// NewText builds a plain text segment, linked when url is non-empty.
func NewText(content, url string) RichText {
	t := &Text{Content: content}
	if url != "" {
		t.Link = &Link{URL: url}
	}
	return RichText{Type: "text", Text: t}
}

// PlainText joins the plain text of every segment.
func PlainText(segments []RichText) string {
	var sb strings.Builder
	for _, s := range segments {
		switch {
		case s.PlainText != "":
			sb.WriteString(s.PlainText)
		case s.Text != nil:
			sb.WriteString(s.Text.Content)
		}
	}
	return sb.String()
}

// Icon is a page icon. Only emoji icons are written.
type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

// Parent identifies the container of a page, block or comment.
type Parent struct {
	Type       string `json:"type,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
	BlockID    string `json:"block_id,omitempty"`
}

// SelectOption is the value of a select or status property.
type SelectOption struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// PropertyValue is a page property. Only the kinds the bridge reads or writes are modelled.
type PropertyValue struct {
	ID     string        `json:"id,omitempty"`
	Type   string        `json:"type,omitempty"`
	Title  []RichText    `json:"title,omitempty"`
	Select *SelectOption `json:"select,omitempty"`
	Status *SelectOption `json:"status,omitempty"`
}

// Page is a Notion page, typically a database row.
type Page struct {
	Object         string                   `json:"object"`
	ID             string                   `json:"id"`
	CreatedTime    time.Time                `json:"created_time"`
	LastEditedTime time.Time                `json:"last_edited_time"`
	Archived       bool                     `json:"archived"`
	Parent         Parent                   `json:"parent"`
	Icon           *Icon                    `json:"icon,omitempty"`
	Properties     map[string]PropertyValue `json:"properties"`
	URL            string                   `json:"url"`
}

// Title returns the page's title property text.
func (p *Page) Title() string {
	for _, prop := range p.Properties {
		if prop.Type == PropertyTitle || len(prop.Title) > 0 {
			return PlainText(prop.Title)
		}
	}
	return ""
}

// Status returns the name of the page's Status property, if any.
func (p *Page) Status() string {
	if prop, ok := p.Properties[PropertyStatus]; ok && prop.Status != nil {
		return prop.Status.Name
	}
	return ""
}

// TextBlock is the payload of heading, paragraph and list item blocks.
type TextBlock struct {
	RichText []RichText `json:"rich_text"`
	Children []Block    `json:"children,omitempty"`
}

// ToDoBlock is the payload of a to_do block.
type ToDoBlock struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

// Block is a content block. Exactly one payload field matches Type.
type Block struct {
	Object           string     `json:"object,omitempty"`
	ID               string     `json:"id,omitempty"`
	Type             string     `json:"type"`
	HasChildren      bool       `json:"has_children,omitempty"`
	Heading2         *TextBlock `json:"heading_2,omitempty"`
	Paragraph        *TextBlock `json:"paragraph,omitempty"`
	BulletedListItem *TextBlock `json:"bulleted_list_item,omitempty"`
	ToDo             *ToDoBlock `json:"to_do,omitempty"`
}

// Filter is a database query filter. Either And or Property plus one condition is set.
type Filter struct {
	And      []Filter   `json:"and,omitempty"`
	Property string     `json:"property,omitempty"`
	Title    *Condition `json:"title,omitempty"`
	Select   *Condition `json:"select,omitempty"`
	Status   *Condition `json:"status,omitempty"`
}

// Condition is an equality match.
type Condition struct {
	Equals string `json:"equals"`
}

// Sort orders query results by a timestamp or property.
type Sort struct {
	Timestamp string `json:"timestamp,omitempty"`
	Property  string `json:"property,omitempty"`
	Direction string `json:"direction"`
}

// QueryRequest is the body of a database query.
type QueryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
}

// PageList is a paginated list of pages.
type PageList struct {
	Results    []Page `json:"results"`
	NextCursor string `json:"next_cursor"`
	HasMore    bool   `json:"has_more"`
}

// BlockList is a paginated list of blocks.
type BlockList struct {
	Results    []Block `json:"results"`
	NextCursor string  `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// CreatePageRequest is the body of a page creation.
type CreatePageRequest struct {
	Parent     Parent                   `json:"parent"`
	Icon       *Icon                    `json:"icon,omitempty"`
	Properties map[string]PropertyValue `json:"properties"`
	Children   []Block                  `json:"children,omitempty"`
}

// UpdatePageRequest is the body of a page update.
type UpdatePageRequest struct {
	Properties map[string]PropertyValue `json:"properties,omitempty"`
	Archived   *bool                    `json:"archived,omitempty"`
}

// Comment is a page comment.
type Comment struct {
	Object   string     `json:"object,omitempty"`
	ID       string     `json:"id,omitempty"`
	Parent   Parent     `json:"parent"`
	RichText []RichText `json:"rich_text"`
}
