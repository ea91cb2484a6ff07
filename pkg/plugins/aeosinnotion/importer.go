package aeosinnotion

import (
	"context"
	"fmt"

	"aeosinnotion/pkg/aeos"
	"aeosinnotion/pkg/notion"
)

// importCommand creates a catalog page describing one registered command. Sequence
// actions are appended afterwards one block at a time so nesting is preserved.
// Re-importing creates a duplicate page.
func (p *Plugin) importCommand(ctx context.Context, args aeos.Args) aeos.Result {
	format := args["command"]
	if format == "" {
		return aeos.Fail("No command provided")
	}

	cmd, ok := p.catalog.Lookup(format)
	if !ok {
		return aeos.Fail("Command not found: %s", format)
	}

	description := cmd.Description
	if description == "" {
		description = "No description provided for this command"
	}
	requirements := cmd.RequiresApplication
	if requirements == "" {
		requirements = "No requirements to run this command"
	}

	children := []notion.Block{
		notion.Heading("Description"),
		notion.Paragraph(description),
		notion.Heading("Requirements"),
		notion.BulletedListItem(requirements),
		notion.Heading("Actions"),
	}
	if !cmd.IsSequence() {
		children = append(children, notion.BulletedListItem("This is an in-built command"))
	}

	pageID := p.workspace.CreatePage(ctx, p.opts.CommandsDB, cmd.Format, notion.CommandIcon, children, "")
	if pageID == "" {
		return aeos.Fail("Failed to create page for command: %s", cmd.Format)
	}

	if cmd.IsSequence() {
		for _, action := range actionBlocks(cmd.Sequence) {
			if !p.appendNested(ctx, pageID, action) {
				return aeos.Fail("Failed to add actions for command: %s", cmd.Format)
			}
		}
	}

	p.logger.Info("imported command %q", cmd.Format)
	return aeos.Ok("Command imported: " + notion.PageURL(pageID))
}

// importAll imports every registered command in registration order, stopping at the first failure.
func (p *Plugin) importAll(ctx context.Context, _ aeos.Args) aeos.Result {
	formats := p.catalog.Formats()
	for _, format := range formats {
		if result := p.importCommand(ctx, aeos.Args{"command": format}); !result.Success {
			p.logger.Error("import of %q failed: %s", format, result.Message)
			return aeos.Fail("Failed to import command: %s", format)
		}
	}
	return aeos.Ok(fmt.Sprintf("Imported %d commands", len(formats)))
}

// actionBlocks renders a sequence as nested bulleted list items.
func actionBlocks(steps []aeos.Step) []notion.Block {
	blocks := make([]notion.Block, 0, len(steps))
	for _, step := range steps {
		blocks = append(blocks, notion.BulletedListItem(step.Run, actionBlocks(step.Steps)...))
	}
	return blocks
}

// appendNested appends b under parentID without its children, then appends each
// child under the new block. No child is created before its parent.
func (p *Plugin) appendNested(ctx context.Context, parentID string, b notion.Block) bool {
	id := p.workspace.AppendChildren(ctx, parentID, []notion.Block{notion.WithoutChildren(b)})
	if id == "" {
		return false
	}
	for _, child := range notion.ChildrenOf(b) {
		if !p.appendNested(ctx, id, child) {
			return false
		}
	}
	return true
}
