// Package render turns a selected file list into an ASCII directory tree.
// It is a pure function of the entries; the filesystem is never consulted.
package render

import (
	"sort"
	"strings"

	"github.com/temirov/ingest/internal/types"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directorySuffix = "/"
	pathSeparator   = "/"
)

// Node is one prefix-tree node built from relative path segments.
// File-versus-directory is a structural distinction: a node is a directory
// iff some path passes through it or it was recorded as one.
type Node struct {
	Name        string
	IsDirectory bool
	Children    []*Node
}

// BuildTree constructs the prefix tree for the provided entries. The returned
// root node carries the display name and is always a directory node.
func BuildTree(rootDisplayName string, entries []types.FileEntry) *Node {
	rootNode := &Node{Name: rootDisplayName, IsDirectory: true}
	for _, entry := range entries {
		segments := strings.Split(entry.RelativePath, pathSeparator)
		currentNode := rootNode
		for segmentIndex, segment := range segments {
			isLeaf := segmentIndex == len(segments)-1
			currentNode = currentNode.child(segment, !isLeaf)
		}
	}
	sortChildren(rootNode)
	return rootNode
}

// child finds or creates the named child, promoting it to a directory when a
// deeper path passes through it.
func (node *Node) child(childName string, isDirectory bool) *Node {
	for _, existingChild := range node.Children {
		if existingChild.Name == childName {
			if isDirectory {
				existingChild.IsDirectory = true
			}
			return existingChild
		}
	}
	createdChild := &Node{Name: childName, IsDirectory: isDirectory}
	node.Children = append(node.Children, createdChild)
	return createdChild
}

// sortChildren orders every level directories-before-files, each group
// case-insensitive alphabetical with byte order as the tie-break.
func sortChildren(node *Node) {
	sort.Slice(node.Children, func(firstIndex, secondIndex int) bool {
		firstChild := node.Children[firstIndex]
		secondChild := node.Children[secondIndex]
		if firstChild.IsDirectory != secondChild.IsDirectory {
			return firstChild.IsDirectory
		}
		firstLower := strings.ToLower(firstChild.Name)
		secondLower := strings.ToLower(secondChild.Name)
		if firstLower == secondLower {
			return firstChild.Name < secondChild.Name
		}
		return firstLower < secondLower
	})
	for _, childNode := range node.Children {
		sortChildren(childNode)
	}
}

// Render returns the tree diagram lines for the selection. A single-file root
// renders exactly one line naming the file; a directory root with zero
// entries renders one placeholder line naming the directory.
func Render(rootDisplayName string, entries []types.FileEntry, isDirectory bool) []string {
	if !isDirectory {
		return []string{rootDisplayName}
	}
	rootNode := BuildTree(rootDisplayName, entries)
	lines := []string{rootNode.Name + directorySuffix}
	renderChildren(rootNode, "", &lines)
	return lines
}

// renderChildren appends connector-prefixed lines for every child of node.
func renderChildren(node *Node, prefix string, lines *[]string) {
	numberOfChildren := len(node.Children)
	for childIndex, childNode := range node.Children {
		isLastChild := childIndex == numberOfChildren-1
		connector := treeBranchConnector
		childPrefix := prefix + treeBranchPadding
		if isLastChild {
			connector = treeLastConnector
			childPrefix = prefix + treeLastPadding
		}
		label := childNode.Name
		if childNode.IsDirectory {
			label += directorySuffix
		}
		*lines = append(*lines, prefix+connector+label)
		if childNode.IsDirectory {
			renderChildren(childNode, childPrefix, lines)
		}
	}
}

// OrderedEntries returns the entries in renderer order: the depth-first
// traversal of the prefix tree with directories before files at each level.
// Packaging and the returned result both follow this order.
func OrderedEntries(rootDisplayName string, entries []types.FileEntry) []types.FileEntry {
	entryByRelativePath := make(map[string]types.FileEntry, len(entries))
	for _, entry := range entries {
		entryByRelativePath[entry.RelativePath] = entry
	}
	rootNode := BuildTree(rootDisplayName, entries)
	ordered := make([]types.FileEntry, 0, len(entries))
	collectFiles(rootNode, "", entryByRelativePath, &ordered)
	return ordered
}

// collectFiles walks the sorted tree gathering file nodes in display order.
func collectFiles(node *Node, parentPath string, entryByRelativePath map[string]types.FileEntry, ordered *[]types.FileEntry) {
	for _, childNode := range node.Children {
		childPath := childNode.Name
		if parentPath != "" {
			childPath = parentPath + pathSeparator + childNode.Name
		}
		if childNode.IsDirectory {
			collectFiles(childNode, childPath, entryByRelativePath, ordered)
			continue
		}
		if entry, exists := entryByRelativePath[childPath]; exists {
			*ordered = append(*ordered, entry)
		}
	}
}
