package mcpserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wrenfall/antaloor/internal/docservice"
	"github.com/wrenfall/antaloor/internal/index"
	"github.com/wrenfall/antaloor/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)

	if err := store.Write("quests.qtx", []byte(testutil.QTXFixture)); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("strings.lan", testutil.LANFixture(t)); err != nil {
		t.Fatal(err)
	}
	_ = db.UpsertFile(
		index.FileRow{Path: "quests.qtx", Format: "qtx", Checksum: "cs", UpdatedAt: time.Now()},
		[]index.EntryRow{{Ref: "0.0", Kind: "npc", Title: "NPC_12", Body: "NPC_12\nHermit"}},
	)

	svc := docservice.New(store, nil)
	return New(svc, db)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we test
	// through the tool handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_entries":
		result, err = srv.searchEntries(ctx, req)
	case "read_node":
		result, err = srv.readNode(ctx, req)
	case "list_quests":
		result, err = srv.listQuests(ctx, req)
	case "read_dialog_tree":
		result, err = srv.readDialogTree(ctx, req)
	case "read_translations":
		result, err = srv.readTranslations(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestReadNodeRoot(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_node", map[string]interface{}{"path": "quests.qtx"})
	if r.IsError {
		t.Fatalf("read_node error: %s", resultText(r))
	}
	text := resultText(r)
	for _, want := range []string{`"ref": "."`, `"kind": "root"`, "NPCs", "Quests"} {
		if !strings.Contains(text, want) {
			t.Errorf("root node missing %q:\n%s", want, text)
		}
	}
}

func TestReadNodeByRef(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_node", map[string]interface{}{"path": "quests.qtx", "ref": "0.0"})
	if r.IsError {
		t.Fatalf("read_node error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, `"kind": "npc"`) || !strings.Contains(text, "Hermit") {
		t.Errorf("npc node = %s", text)
	}
}

func TestReadNodeNPCSpawn(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_node", map[string]interface{}{"path": "quests.qtx", "ref": "0.0"})
	if r.IsError {
		t.Fatalf("read_node error: %s", resultText(r))
	}
	text := resultText(r)
	for _, want := range []string{`"model": "Hermit"`, `"level": "10"`, `"name": "Staff"`} {
		if !strings.Contains(text, want) {
			t.Errorf("spawn breakdown missing %q:\n%s", want, text)
		}
	}
}

func TestReadNodeBadRef(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_node", map[string]interface{}{"path": "quests.qtx", "ref": "9.9"})
	if !r.IsError {
		t.Error("expected error for unresolvable ref")
	}
}

func TestListQuestsLanguageFile(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_quests", map[string]interface{}{"path": "strings.lan"})
	text := resultText(r)
	if !strings.Contains(text, "DQ_1 (2 dialogs)") {
		t.Errorf("list_quests = %q", text)
	}
}

func TestListQuestsQuestFile(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_quests", map[string]interface{}{"path": "quests.qtx"})
	text := resultText(r)
	if !strings.Contains(text, "Q_1001") {
		t.Errorf("list_quests = %q", text)
	}
}

func TestReadDialogTree(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_dialog_tree", map[string]interface{}{
		"path":  "strings.lan",
		"quest": "DQ_1",
	})
	if r.IsError {
		t.Fatalf("read_dialog_tree error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, "cue_hermit_01") {
		t.Errorf("dialog tree missing sound cue:\n%s", text)
	}
}

func TestReadDialogTreeMissingQuest(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_dialog_tree", map[string]interface{}{
		"path":  "strings.lan",
		"quest": "DQ_404",
	})
	if !r.IsError {
		t.Error("expected error for unknown quest")
	}
}

func TestReadTranslations(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_translations", map[string]interface{}{"path": "strings.lan"})
	text := resultText(r)
	if !strings.Contains(text, "Q_1\tTake the letter") {
		t.Errorf("translations = %q", text)
	}
}

func TestReadTranslationsCategory(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_translations", map[string]interface{}{
		"path":     "strings.lan",
		"category": "Dialogs",
	})
	text := resultText(r)
	if !strings.Contains(text, "DQ_1.1") || strings.Contains(text, "Q_1\t") {
		t.Errorf("Dialogs category = %q", text)
	}
}

func TestReadTranslationsWrongFormat(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_translations", map[string]interface{}{"path": "quests.qtx"})
	if !r.IsError {
		t.Error("expected error for non-language file")
	}
}

func TestSearchEntries(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "search_entries", map[string]interface{}{"query": "Hermit"})
	if r.IsError {
		t.Fatalf("search error: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "quests.qtx") {
		t.Errorf("search = %q", resultText(r))
	}
}
