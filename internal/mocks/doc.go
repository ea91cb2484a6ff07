// Package mocks provides shared mock implementations for testing.
//
// This package contains mock implementations of the collaborators the plugins
// and the poller depend on (the Notion workspace, the command runner, the text
// generator and the run journal) that can be used by any package's tests.
//
// # Usage
//
//	import "aeosinnotion/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    ws := mocks.NewMockWorkspace()
//	    ws.FindPageByTitleFunc = func(context.Context, string, string) string { return "cmd-1" }
//	    // Use ws in test...
//	}
//
// # Available Mocks
//
//   - MockWorkspace: Mock for the Notion workspace facade
//   - MockRunner: Mock for aeos.CommandRunner
//   - MockTextGenerator: Mock for aeos.TextGenerator
//   - MockJournal: In-memory run journal
package mocks
