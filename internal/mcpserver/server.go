// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the decoded game-data vault for LLM integration via
// stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wrenfall/antaloor/internal/docservice"
	"github.com/wrenfall/antaloor/internal/document"
	"github.com/wrenfall/antaloor/internal/index"
	"github.com/wrenfall/antaloor/internal/qtx"
)

// Server wraps the MCP server with vault tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
	db  index.EntryIndex
}

// New creates a new MCP server with all vault tools registered.
func New(svc *docservice.Service, db index.EntryIndex) *Server {
	s := &Server{svc: svc, db: db}

	s.mcp = server.NewMCPServer(
		"Antaloor",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search across every decoded string in the vault: "+
			"quest names, NPC data, translations, dialog texts."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("read_node",
		mcp.WithDescription("Read one node of a decoded document tree by its ordinal ref "+
			"(\".\" for the root, \"2.0.5\" for nested nodes). Returns the node's kind, "+
			"properties, and child summaries. Read the antaloor://formats resource for "+
			"the format overview."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the data file (e.g. quests/main.qtx)")),
		mcp.WithString("ref", mcp.Description("Ordinal node ref, default the document root")),
	), s.readNode)

	s.mcp.AddTool(mcp.NewTool("list_quests",
		mcp.WithDescription("List the quests of a data file. For language files this is the "+
			"dialog sequences; for quest files the quest definition nodes."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the data file")),
	), s.listQuests)

	s.mcp.AddTool(mcp.NewTool("read_dialog_tree",
		mcp.WithDescription("Resolve one quest's branching dialog from a language file: every "+
			"line with its speaker, translated text, sound cue, and successor indices."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the .lan file")),
		mcp.WithString("quest", mcp.Required(), mcp.Description("Quest dialog identifier (e.g. DQ_17)")),
	), s.readDialogTree)

	s.mcp.AddTool(mcp.NewTool("read_translations",
		mcp.WithDescription("Read the translation table of a language file, optionally "+
			"restricted to one prefix category (Quests, Dialogs, NPC Names, ...)."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the .lan file")),
		mcp.WithString("category", mcp.Description("Optional category label to filter by")),
	), s.readTranslations)

	// Resource: container format guide.
	s.mcp.AddResource(
		mcp.NewResource("antaloor://formats", "Data Format Guide",
			mcp.WithResourceDescription("Overview of the .lan/.idx/.qtx/.shf container formats and node refs."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatGuideResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

// nodeSummary is the read_node payload: the resolved node plus one level
// of child summaries so the caller knows which refs to descend into.
type nodeSummary struct {
	Ref      string            `json:"ref"`
	Kind     string            `json:"kind"`
	Name     string            `json:"name"`
	Props    map[string]string `json:"props"`
	Spawn    *qtx.CreateString `json:"spawn,omitempty"`
	Children []childSummary    `json:"children"`
}

type childSummary struct {
	Ref  string `json:"ref"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func (s *Server) readNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ref := "."
	if r, rerr := req.RequireString("ref"); rerr == nil && r != "" {
		ref = r
	}

	node, err := s.svc.Node(path, ref)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot resolve %s in %s: %v", ref, path, err)), nil
	}

	sum := nodeSummary{
		Ref:      ref,
		Kind:     string(node.Kind),
		Name:     node.Name,
		Props:    node.Props(),
		Children: make([]childSummary, len(node.Children)),
	}
	if node.Kind == document.KindNPC {
		if cs, ok := node.Get("create_string"); ok && cs != "" {
			spawn := qtx.ParseCreateString(cs)
			sum.Spawn = &spawn
		}
	}
	for i, c := range node.Children {
		sum.Children[i] = childSummary{Ref: childRef(ref, i), Kind: string(c.Kind), Name: c.Name}
	}
	out, _ := json.MarshalIndent(sum, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func childRef(parent string, i int) string {
	if parent == "." || parent == "" {
		return strconv.Itoa(i)
	}
	return parent + "." + strconv.Itoa(i)
}

func (s *Server) listQuests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Language files list their dialog sequences directly.
	if f, lerr := s.svc.Language(path); lerr == nil {
		var lines []string
		for _, q := range f.Quests {
			lines = append(lines, fmt.Sprintf("%s (%d dialogs)", q.ID, len(q.Dialogs)))
		}
		if len(lines) == 0 {
			return mcp.NewToolResultText("no quests found"), nil
		}
		return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
	}

	// Everything else: walk the document for quest nodes.
	sess, err := s.svc.Get(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot open %s: %v", path, err)), nil
	}
	var lines []string
	sess.Doc.Root.Walk(func(n *document.Node) bool {
		if n.Kind == document.KindQuest {
			lines = append(lines, n.Name)
		}
		return true
	})
	if len(lines) == 0 {
		return mcp.NewToolResultText("no quests found"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readDialogTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	quest, err := req.RequireString("quest")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nodes, err := s.svc.DialogGraph(path, quest)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("dialog tree %s in %s: %v", quest, path, err)), nil
	}
	out, _ := json.MarshalIndent(nodes, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readTranslations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category := ""
	if c, cerr := req.RequireString("category"); cerr == nil {
		category = c
	}

	if category == "" {
		f, lerr := s.svc.Language(path)
		if lerr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("not a language file: %s", path)), nil
		}
		var b strings.Builder
		for _, e := range f.Translations.Entries() {
			fmt.Fprintf(&b, "%s\t%s\n", e.Key, e.Value)
		}
		return mcp.NewToolResultText(b.String()), nil
	}

	groups, gerr := s.svc.Categories(path)
	if gerr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not a language file: %s", path)), nil
	}
	for _, g := range groups {
		if g.Label != category {
			continue
		}
		var b strings.Builder
		for _, e := range g.Entries {
			fmt.Fprintf(&b, "%s\t%s\n", e.Key, e.Value)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("unknown category: %s", category)), nil
}

func (s *Server) readFormatGuideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "antaloor://formats",
			MIMEType: "text/markdown",
			Text:     FormatGuide,
		},
	}, nil
}
