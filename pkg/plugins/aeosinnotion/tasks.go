package aeosinnotion

import (
	"context"
	"strings"

	"aeosinnotion/pkg/aeos"
	"aeosinnotion/pkg/notion"
)

const (
	fallbackComment = "Wasn't sure what tasks to list for this one!"

	titlePrompt       = "Provide a very short title for the task: "
	iconPrompt        = "Provide a single emoji for the task: "
	descriptionPrompt = "Provide a 1-2 sentence description for the task: "
)

// createTaskFromPrompt derives a title, icon and description for prompt and
// creates a task whose checklist is planned from the prompt itself.
func (p *Plugin) createTaskFromPrompt(ctx context.Context, args aeos.Args) aeos.Result {
	prompt := args["prompt"]
	if prompt == "" {
		return aeos.Fail("No prompt provided")
	}
	if p.generator == nil {
		return aeos.Fail("Text generation is not configured")
	}

	title, err := p.generator.Generate(ctx, titlePrompt+prompt, 20, 0.2)
	if err != nil {
		return aeos.Fail("Failed to generate a title: %v", err)
	}
	title = trimGenerated(title)

	icon, err := p.generator.Generate(ctx, iconPrompt+title, 10, 0.5)
	if err != nil {
		p.logger.Warn("failed to generate icon for %q, using default: %v", title, err)
		icon = ""
	}

	description, err := p.generator.Generate(ctx, descriptionPrompt+prompt, 40, 0.4)
	if err != nil {
		return aeos.Fail("Failed to generate a description: %v", err)
	}

	return p.createTask(ctx, aeos.Args{
		"title":       title,
		"icon":        notion.FirstGlyph(icon),
		"description": trimGenerated(description),
		"tasks":       prompt,
	})
}

// createTask adds a task page assigned to this worker. Each planned command becomes a
// to-do linked to its catalog page when one exists.
func (p *Plugin) createTask(ctx context.Context, args aeos.Args) aeos.Result {
	if args["title"] == "" {
		return aeos.Fail("No title provided")
	}
	if args["description"] == "" {
		return aeos.Fail("No description provided")
	}
	if args["tasks"] == "" {
		return aeos.Fail("No tasks provided")
	}

	title := args["title"]
	icon := notion.NormalizeIcon(args["icon"])
	description := strings.ReplaceAll(args["description"], `\n`, "\n")

	children := []notion.Block{
		notion.Heading("Description"),
		notion.Paragraph(description),
		notion.Heading("Task List"),
	}

	executables, err := p.planner.Plan(ctx, args["tasks"])
	if err != nil {
		p.logger.Warn("could not derive a checklist for %q: %v", title, err)
		children = append(children, notion.ToDo("", ""))
		pageID := p.workspace.CreatePage(ctx, p.opts.TasksDB, title, icon, children, p.opts.Name)
		if pageID == "" {
			return aeos.Fail("Failed to create task")
		}
		p.workspace.CommentOnPage(ctx, pageID, fallbackComment)
		return aeos.Ok("Task created: " + notion.PageURL(pageID))
	}

	for i := range executables {
		exe := &executables[i]
		children = append(children, notion.ToDo(aeos.InputString(exe), p.catalogURL(ctx, exe.Command.Format)))
	}

	pageID := p.workspace.CreatePage(ctx, p.opts.TasksDB, title, icon, children, p.opts.Name)
	if pageID == "" {
		return aeos.Fail("Failed to create task")
	}
	p.logger.Info("created task %q with %d to-dos", title, len(executables))
	return aeos.Ok("Task created: " + notion.PageURL(pageID))
}

// catalogURL links a command format to its page in the commands database, or returns "".
func (p *Plugin) catalogURL(ctx context.Context, format string) string {
	if p.opts.CommandsDB == "" {
		return ""
	}
	id := p.workspace.FindPageByTitle(ctx, p.opts.CommandsDB, format)
	if id == "" {
		return ""
	}
	return notion.PageURL(notion.CompactID(id))
}
