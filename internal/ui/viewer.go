package ui

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"repoman/internal/artifact"
	"repoman/internal/store"
)

// Inspector displays the repo contents in an interactive TUI
type Inspector struct {
	repoPath string
	stores   []store.Store
}

// NewInspector creates a new Inspector
func NewInspector(repoPath string, stores []store.Store) *Inspector {
	return &Inspector{repoPath: repoPath, stores: stores}
}

// View opens the interactive browser: stores on top, names and versions
// below, file details on the right. Press q or Esc to leave.
func (ins *Inspector) View() error {
	app := tview.NewApplication()

	details := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	details.SetBorder(true).SetTitle(" details ")

	root := tview.NewTreeNode(ins.repoPath).SetColor(tcell.ColorYellow)
	for _, s := range ins.stores {
		root.AddChild(ins.storeNode(s))
	}

	tree := tview.NewTreeView().
		SetRoot(root).
		SetCurrentNode(root)
	tree.SetBorder(true).SetTitle(" repo ")

	tree.SetChangedFunc(func(node *tview.TreeNode) {
		details.Clear()
		if a, ok := node.GetReference().(artifact.Artifact); ok {
			fmt.Fprintf(details, "[yellow]name[white]      %s\n", a.Name())
			fmt.Fprintf(details, "[yellow]version[white]   %s\n", a.Version())
			fmt.Fprintf(details, "[yellow]type[white]      %s\n", a.Type())
			fmt.Fprintf(details, "[yellow]path[white]      %s\n", a.Path())
			fmt.Fprintf(details, "[yellow]inode[white]     %d\n", a.Inode())
		}
	})
	tree.SetSelectedFunc(func(node *tview.TreeNode) {
		node.SetExpanded(!node.IsExpanded())
	})

	flex := tview.NewFlex().
		AddItem(tree, 0, 1, true).
		AddItem(details, 0, 1, false)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})

	return app.SetRoot(flex, true).Run()
}

func (ins *Inspector) storeNode(s store.Store) *tview.TreeNode {
	list := s.Artifacts()
	node := tview.NewTreeNode(fmt.Sprintf("%s (%d)", s.Name(), list.Len())).
		SetColor(tcell.ColorAqua)

	names := make([]string, 0, len(list.Names))
	for name := range list.Names {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		nameNode := tview.NewTreeNode(name).
			SetColor(tcell.ColorYellow).
			SetExpanded(false)
		entry := list.Names[name]
		for _, ver := range artifact.SortedVersions(versionsOf(entry)) {
			verNode := tview.NewTreeNode(ver).SetExpanded(false)
			for _, inode := range entry.Versions[ver].Inodes {
				for _, a := range inode.Artifacts {
					verNode.AddChild(tview.NewTreeNode(a.Path()).
						SetReference(a).
						SetColor(tcell.ColorGreen))
				}
			}
			nameNode.AddChild(verNode)
		}
		node.AddChild(nameNode)
	}
	return node
}
