package notion

// Heading builds a heading_2 block.
func Heading(text string) Block {
	return Block{
		Object:   "block",
		Type:     BlockHeading2,
		Heading2: &TextBlock{RichText: []RichText{NewText(text, "")}},
	}
}

// Paragraph builds a paragraph block.
func Paragraph(text string) Block {
	return Block{
		Object:    "block",
		Type:      BlockParagraph,
		Paragraph: &TextBlock{RichText: []RichText{NewText(text, "")}},
	}
}

// BulletedListItem builds a bulleted list item, optionally with nested children.
func BulletedListItem(text string, children ...Block) Block {
	return Block{
		Object:           "block",
		Type:             BlockBulletedListItem,
		BulletedListItem: &TextBlock{RichText: []RichText{NewText(text, "")}, Children: children},
	}
}

// ToDo builds an unchecked to_do block whose text links to url when url is non-empty.
func ToDo(text, url string) Block {
	rich := []RichText{}
	if text != "" || url != "" {
		rich = append(rich, NewText(text, url))
	}
	return Block{
		Object: "block",
		Type:   BlockToDo,
		ToDo:   &ToDoBlock{RichText: rich},
	}
}

// WithoutChildren returns a copy of b with nested list children removed.
func WithoutChildren(b Block) Block {
	if b.BulletedListItem != nil {
		item := *b.BulletedListItem
		item.Children = nil
		b.BulletedListItem = &item
	}
	return b
}

// ChildrenOf returns the nested list children of b.
func ChildrenOf(b Block) []Block {
	if b.BulletedListItem == nil {
		return nil
	}
	return b.BulletedListItem.Children
}

// Text returns the plain text of a block's payload.
func (b *Block) Text() string {
	switch {
	case b.ToDo != nil:
		return PlainText(b.ToDo.RichText)
	case b.Heading2 != nil:
		return PlainText(b.Heading2.RichText)
	case b.Paragraph != nil:
		return PlainText(b.Paragraph.RichText)
	case b.BulletedListItem != nil:
		return PlainText(b.BulletedListItem.RichText)
	}
	return ""
}
