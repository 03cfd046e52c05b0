// Package parm mirrors a node's flat parameter array and reconstructs the
// hierarchical control tree from it. The engine emits parameters as a
// flat, parent-indexed array whose order is semantically significant; the
// walker in this package turns that array into one control per visible
// leaf parameter, per redraw, without ever re-sorting it.
package parm

import (
	"go.uber.org/zap"

	"github.com/otl-tools/otlbridge/pkg/hapi"
)

// Control is one leaf parameter handed to a Renderer. Int, Float and
// String are owned, tuple-sized views into the node's value arrays,
// constructed once at fetch time so a descriptor can never index outside
// its own values.
type Control struct {
	Info    hapi.ParmInfo
	Int     []int
	Float   []float64
	String  []string
	Choices []hapi.ParmChoiceInfo
}

// Parms holds a node's parameter descriptors and values between cooks.
type Parms struct {
	Editable bool

	// LastChangedParmID is the id of the parameter whose control changed
	// most recently, -1 if none. Hosts use it to restore input focus
	// after a long cook.
	LastChangedParmID int

	node    hapi.NodeID
	eng     hapi.Engine
	log     *zap.Logger
	infos   []hapi.ParmInfo
	ints    []int
	floats  []float64
	strings []string
	choices []hapi.ParmChoiceInfo

	selections *FolderSelections
}

// New returns an empty parameter set for the given node. Values are not
// fetched until Fetch is called.
func New(eng hapi.Engine, node hapi.NodeID, log *zap.Logger) *Parms {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parms{
		LastChangedParmID: -1,
		node:              node,
		eng:               eng,
		log:               log,
		selections:        NewFolderSelections(),
	}
}

// Node returns the node the parameters belong to.
func (p *Parms) Node() hapi.NodeID { return p.node }

// Count returns the number of parameter descriptors.
func (p *Parms) Count() int { return len(p.infos) }

// Infos returns the descriptor array in engine order.
func (p *Parms) Infos() []hapi.ParmInfo { return p.infos }

// Selections returns the persisted folder tab selections.
func (p *Parms) Selections() *FolderSelections { return p.selections }

// Fetch replaces descriptors and all three value arrays with a fresh
// snapshot from the engine. Folder selections persist across fetches so
// tab state survives rebuilds.
func (p *Parms) Fetch() error {
	infos, res := p.eng.GetParameters(p.node)
	if err := hapi.CheckResult(p.eng, res, "GetParameters"); err != nil {
		return err
	}
	ints, res := p.eng.GetParmIntValues(p.node)
	if err := hapi.CheckResult(p.eng, res, "GetParmIntValues"); err != nil {
		return err
	}
	floats, res := p.eng.GetParmFloatValues(p.node)
	if err := hapi.CheckResult(p.eng, res, "GetParmFloatValues"); err != nil {
		return err
	}
	strings, res := p.eng.GetParmStringValues(p.node)
	if err := hapi.CheckResult(p.eng, res, "GetParmStringValues"); err != nil {
		return err
	}
	choices, res := p.eng.GetParmChoiceLists(p.node)
	if err := hapi.CheckResult(p.eng, res, "GetParmChoiceLists"); err != nil {
		return err
	}

	p.infos = infos
	p.ints = ints
	p.floats = floats
	p.strings = strings
	p.choices = choices
	return nil
}

// ControlFor returns the renderer view for the parameter with the given
// id. Used by callers that read or write a single known parameter
// outside a walk, such as curve point sync.
func (p *Parms) ControlFor(id int) (Control, bool) {
	for _, info := range p.infos {
		if info.ID == id {
			return p.control(info)
		}
	}
	return Control{}, false
}

// ControlByName returns the renderer view for the named parameter.
func (p *Parms) ControlByName(name string) (Control, bool) {
	for _, info := range p.infos {
		if info.Name == name {
			return p.control(info)
		}
	}
	return Control{}, false
}

// control builds the renderer view for one descriptor. Returns false when
// the descriptor references a value index that is out of bounds — a
// malformed feed entry that gets logged and skipped rather than rendered.
func (p *Parms) control(info hapi.ParmInfo) (Control, bool) {
	c := Control{Info: info}

	switch {
	case info.IsInt():
		if info.IntValuesIndex < 0 || info.IntValuesIndex+info.Size > len(p.ints) {
			p.log.Error("parm int values index out of bounds",
				zap.Int("parm", info.ID), zap.Int("index", info.IntValuesIndex))
			return c, false
		}
		c.Int = p.ints[info.IntValuesIndex : info.IntValuesIndex+info.Size]
	case info.IsFloat():
		if info.FloatValuesIndex < 0 || info.FloatValuesIndex+info.Size > len(p.floats) {
			p.log.Error("parm float values index out of bounds",
				zap.Int("parm", info.ID), zap.Int("index", info.FloatValuesIndex))
			return c, false
		}
		c.Float = p.floats[info.FloatValuesIndex : info.FloatValuesIndex+info.Size]
	case info.IsString():
		if info.StringValuesIndex < 0 || info.StringValuesIndex+info.Size > len(p.strings) {
			p.log.Error("parm string values index out of bounds",
				zap.Int("parm", info.ID), zap.Int("index", info.StringValuesIndex))
			return c, false
		}
		c.String = p.strings[info.StringValuesIndex : info.StringValuesIndex+info.Size]
	}

	if info.ChoiceCount > 0 && info.ChoiceIndex >= 0 &&
		info.ChoiceIndex+info.ChoiceCount <= len(p.choices) {
		c.Choices = p.choices[info.ChoiceIndex : info.ChoiceIndex+info.ChoiceCount]

		// Every choice must point back at its owning parameter. A
		// violation is a feed-consistency error, reported but rendered
		// as-is.
		for i, choice := range c.Choices {
			if choice.ParentParmID != info.ID {
				p.log.Error("parm choice parent id does not match parm id",
					zap.Int("parm", info.ID),
					zap.Int("choiceParent", choice.ParentParmID),
					zap.Int("choiceIndex", info.ChoiceIndex+i),
					zap.Int("choiceCount", info.ChoiceCount))
			}
		}
	}

	return c, true
}
