package parm

import (
	"go.uber.org/zap"

	"github.com/otl-tools/otlbridge/pkg/hapi"
)

// Renderer is the presentation adapter the walker drives. One method per
// leaf control kind; each reports whether the user changed the value, in
// which case the control's value slice already holds the new value.
// TabStrip renders a folder list's tab labels and returns the selection,
// which may simply be the passed-in one.
type Renderer interface {
	IntField(c Control) bool
	IntDropdown(c Control) bool
	Toggle(c Control) bool
	FloatField(c Control) bool
	ColourField(c Control) bool
	StringField(c Control) bool
	FileField(c Control) bool
	Separator()
	TabStrip(labels []string, selected int) int
}

// Walk traverses the flat parameter array once, rendering every visible
// leaf parameter through r and recording folder tab selections. It
// returns whether any leaf value changed; changed values have already
// been pushed back to the engine. A push failure aborts the walk with the
// control's previous value restored locally.
//
// The traversal keeps two parallel stacks: the ids of the folders
// currently accepted, and how many of their flat entries remain. Sibling
// folders' parameters are stored contiguously even though only one folder
// is shown, so any entry whose parent is not the top of the id stack is
// skipped without touching the counts.
func (p *Parms) Walk(r Renderer) (bool, error) {
	if len(p.infos) == 0 {
		return false, nil
	}

	changed := false
	folderListCount := 0

	var parentIDStack []int
	var remainingStack []int

	index := 0
	for index < len(p.infos) {
		info := p.infos[index]

		if len(parentIDStack) > 0 {
			top := len(parentIDStack) - 1

			// Entries of non-selected sibling folders are skipped before
			// the remaining-count is touched, or the count would drain
			// as if the entry belonged to the selected folder.
			if info.ParentID != parentIDStack[top] {
				index++
				continue
			}

			remainingStack[top]--
			if remainingStack[top] <= 0 {
				parentIDStack = parentIDStack[:top]
				remainingStack = remainingStack[:top]
			}
		} else if info.ParentID != -1 {
			// Root-level traversal only accepts root parameters. This
			// should not happen at depth 0, but a malformed feed must
			// not derail the walk.
			index++
			continue
		}

		if info.Type == hapi.ParmTypeFolderList {
			var consumed int
			index, consumed = p.walkFolderList(r, index, folderListCount,
				&parentIDStack, &remainingStack)
			folderListCount += consumed
			continue
		}

		if info.Type == hapi.ParmTypeFolder {
			// Folders are consumed inside their owning folder list's
			// lookahead; meeting one here means the feed is inconsistent.
			p.log.Error("folder parameter outside its folder list",
				zap.Int("parm", info.ID), zap.Int("index", index))
			index++
			continue
		}

		leafChanged, err := p.renderLeaf(r, info)
		if err != nil {
			return changed, err
		}
		changed = changed || leafChanged
		index++
	}

	return changed, nil
}

// walkFolderList handles one folder list entry at index: reads its Size
// folder entries, renders a tab strip over the visible ones, records the
// selection and pushes the selected folder onto the stacks. Returns the
// next index to resume at and how many folder lists were consumed (0 when
// the list has no visible folders and contributes nothing).
func (p *Parms) walkFolderList(
	r Renderer,
	index int,
	folderListCount int,
	parentIDStack *[]int,
	remainingStack *[]int,
) (next, consumed int) {
	listInfo := p.infos[index]
	folderCount := listInfo.Size
	first := index + 1
	last := index + folderCount

	var tabIDs []int
	var tabLabels []string
	var tabSizes []int

	i := first
	for ; i <= last && i < len(p.infos); i++ {
		if p.infos[i].Type != hapi.ParmTypeFolder {
			p.log.Error("folder list entry is not a folder",
				zap.Int("index", i), zap.Int("folderCount", folderCount))
			continue
		}
		// Invisible folders, or all folders of an invisible list, are
		// left out of the strip but still consumed from the flat array.
		if p.infos[i].Invisible || listInfo.Invisible {
			continue
		}
		tabIDs = append(tabIDs, p.infos[i].ID)
		tabLabels = append(tabLabels, p.infos[i].Label)
		tabSizes = append(tabSizes, p.infos[i].Size)
	}
	next = i

	// With no visible folders the list contributes nothing: no tab strip,
	// no stack frame, and the folder list counter stays put.
	if len(tabIDs) == 0 {
		return next, 0
	}

	selected := p.selections.Get(folderListCount)
	selected = r.TabStrip(tabLabels, selected)
	if selected < 0 || selected >= len(tabIDs) {
		selected = 0
	}
	p.selections.Set(folderListCount, selected, tabIDs[selected])

	// Only the selected folder's frame is pushed; its siblings' entries
	// are skipped by the parent-id check in Walk.
	*parentIDStack = append(*parentIDStack, tabIDs[selected])
	*remainingStack = append(*remainingStack, tabSizes[selected])

	return next, 1
}

// renderLeaf dispatches one leaf parameter to the type-specific renderer
// call and pushes the new value through the engine when it changed.
func (p *Parms) renderLeaf(r Renderer, info hapi.ParmInfo) (bool, error) {
	if info.Invisible {
		return false, nil
	}

	c, ok := p.control(info)
	if !ok {
		return false, nil
	}

	// Snapshot the tuple so a failed push can restore it: a failed push
	// must leave the local values untouched until the next fetch.
	var prevInt []int
	var prevFloat []float64
	var prevString []string
	switch {
	case c.Int != nil:
		prevInt = append(prevInt, c.Int...)
	case c.Float != nil:
		prevFloat = append(prevFloat, c.Float...)
	case c.String != nil:
		prevString = append(prevString, c.String...)
	}

	var changed bool
	switch info.Type {
	case hapi.ParmTypeInt:
		if info.ChoiceCount > 0 && info.ChoiceIndex >= 0 {
			changed = r.IntDropdown(c)
		} else {
			changed = r.IntField(c)
		}
	case hapi.ParmTypeToggle:
		changed = r.Toggle(c)
	case hapi.ParmTypeFloat:
		changed = r.FloatField(c)
	case hapi.ParmTypeColour:
		changed = r.ColourField(c)
	case hapi.ParmTypeString:
		changed = r.StringField(c)
	case hapi.ParmTypeFile:
		changed = r.FileField(c)
	case hapi.ParmTypeSeparator:
		r.Separator()
	}

	if !changed {
		return false, nil
	}

	p.LastChangedParmID = info.ID

	if err := p.push(c); err != nil {
		switch {
		case prevInt != nil:
			copy(c.Int, prevInt)
		case prevFloat != nil:
			copy(c.Float, prevFloat)
		case prevString != nil:
			copy(c.String, prevString)
		}
		return false, err
	}
	return true, nil
}

// Push writes one control's tuple back through the engine outside a render
// walk, for programmatic edits. Records the control as the last changed
// parameter.
func (p *Parms) Push(c Control) error {
	if err := p.push(c); err != nil {
		return err
	}
	p.LastChangedParmID = c.Info.ID
	return nil
}

// push writes one control's tuple back through the engine. Int and float
// tuples go as a value-index range; strings go one component at a time.
func (p *Parms) push(c Control) error {
	info := c.Info
	switch {
	case info.IsInt():
		tuple := make([]int, info.Size)
		copy(tuple, c.Int)
		res := p.eng.SetParmIntValues(p.node, tuple, info.IntValuesIndex, info.Size)
		return hapi.CheckResult(p.eng, res, "SetParmIntValues")
	case info.IsFloat():
		tuple := make([]float64, info.Size)
		copy(tuple, c.Float)
		res := p.eng.SetParmFloatValues(p.node, tuple, info.FloatValuesIndex, info.Size)
		return hapi.CheckResult(p.eng, res, "SetParmFloatValues")
	case info.IsString():
		for component := 0; component < info.Size; component++ {
			res := p.eng.SetParmStringValue(p.node, c.String[component], info.ID, component)
			if err := hapi.CheckResult(p.eng, res, "SetParmStringValue"); err != nil {
				return err
			}
		}
	}
	return nil
}
