package parm

// FolderSelections records which folder tab is selected in each folder
// list, in traversal order. The list grows lazily as folder lists are
// discovered and never shrinks, so tab state survives rebuilds; entries
// for folder lists that later disappear are simply never read again.
type FolderSelections struct {
	selections []int
	folderIDs  []int
}

// NewFolderSelections returns an empty selection history.
func NewFolderSelections() *FolderSelections {
	return &FolderSelections{}
}

// Len returns the number of folder lists seen so far.
func (f *FolderSelections) Len() int {
	return len(f.selections)
}

// Get returns the selection for the listIndex-th folder list of the
// traversal, appending a default selection of folder 0 (and an unset
// folder id) for lists not seen before. Existing entries are never
// mutated by the default fill.
func (f *FolderSelections) Get(listIndex int) int {
	for len(f.selections) <= listIndex {
		f.selections = append(f.selections, 0)
		f.folderIDs = append(f.folderIDs, -1)
	}
	return f.selections[listIndex]
}

// Set records the user's selection and the selected folder's id.
func (f *FolderSelections) Set(listIndex, selection, folderID int) {
	f.Get(listIndex)
	f.selections[listIndex] = selection
	f.folderIDs[listIndex] = folderID
}

// FolderID returns the recorded folder id for a list, -1 if unset.
func (f *FolderSelections) FolderID(listIndex int) int {
	f.Get(listIndex)
	return f.folderIDs[listIndex]
}
