package mcpserver

// FormatGuide describes the game-data container formats so LLM consumers
// know what each tool can return and which files are editable.
const FormatGuide = `# Antaloor Data Format Guide

The vault holds four proprietary container formats from the game's
content pipeline.

## .lan — language files (read-only)

Binary files carrying the localized text: a translation table
(key -> display string), alias records, and branching quest dialogs.
Keys are grouped by literal prefix (Q_ quests, DQ_ dialogs, NPCName
speakers, RUMORS_, TALK_, ...). A dialog key DQ_<n> belongs to quest
Q_<n>. Use read_translations and read_dialog_tree on these files.

## .idx — quest serializations (editable)

Legacy SOAP/XML-RPC dumps of the quest object graph. Nodes are typed
(quest, npc, dialog, action, reward, ...) and addressed by ordinal refs
like "2.0.5" (root is "."). Edits through the API are mirrored into the
XML and saved back with a UTF-8 BOM; the previous file is kept as .bak.

## .qtx — quest text files (editable)

Line-oriented plaintext quest definitions: NPC, LOCATION, and QUEST
records with ACTION/FC/AOQ/REWARD/GIVER sub-lines. Absent fields are
written as (null), never as an empty string.

## .shf — editor dumps (read-only)

.NET serialization dumps read with a best-effort string scan. The
recovered strings are classified into quests, NPC refs, locations,
items, enemies, keyword groups, and dialog texts. Never writable.

## Refs

Every tool that returns nodes uses ordinal refs: "." is the document
root, "0" its first child, "2.0.5" a nested path. Pass these refs to
read_node to descend.
`
