package types

import "fmt"

// Default stage IDs. The IDs are kept stable so boards persisted by earlier
// builds still decode.
const (
	StageTodo       = "column-1"
	StageInProgress = "column-2"
	StageReview     = "column-3"
	StageDone       = "column-4"
)

// Stage is one step of the pipeline. Action is the label of the button that
// moves a task out of this stage.
type Stage struct {
	ID     string `json:"id" yaml:"id" mapstructure:"id"`
	Title  string `json:"title" yaml:"title" mapstructure:"title"`
	Action string `json:"action,omitempty" yaml:"action,omitempty" mapstructure:"action"`
}

// Pipeline is the ordered list of stages. Display order and the successor
// relation are both derived from it.
type Pipeline struct {
	Stages []Stage `json:"stages" yaml:"stages" mapstructure:"stages"`
}

// DefaultPipeline returns the four-stage To Do, In Progress, Peer Review,
// Done pipeline.
func DefaultPipeline() Pipeline {
	return Pipeline{Stages: []Stage{
		{ID: StageTodo, Title: "To Do", Action: "Start Work"},
		{ID: StageInProgress, Title: "In Progress", Action: "Submit for Review"},
		{ID: StageReview, Title: "Peer Review", Action: "Mark as Done"},
		{ID: StageDone, Title: "Done", Action: "Move to To Do"},
	}}
}

// Validate checks that the pipeline has at least one stage and that stage
// IDs and titles are non-empty and IDs are unique.
func (p Pipeline) Validate() error {
	if len(p.Stages) == 0 {
		return fmt.Errorf("%w: no stages", ErrPipelineInvalid)
	}
	seen := make(map[string]bool, len(p.Stages))
	for i, s := range p.Stages {
		if s.ID == "" {
			return fmt.Errorf("%w: stage %d has no id", ErrPipelineInvalid, i)
		}
		if s.Title == "" {
			return fmt.Errorf("%w: stage %q has no title", ErrPipelineInvalid, s.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate stage %q", ErrPipelineInvalid, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// IDs returns the stage IDs in pipeline order.
func (p Pipeline) IDs() []string {
	ids := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		ids[i] = s.ID
	}
	return ids
}

// Stage returns the stage with the given ID.
func (p Pipeline) Stage(id string) (Stage, bool) {
	if i := p.index(id); i >= 0 {
		return p.Stages[i], true
	}
	return Stage{}, false
}

// Has reports whether id names a stage of the pipeline.
func (p Pipeline) Has(id string) bool {
	return p.index(id) >= 0
}

// Next returns the successor of the given stage. The last stage and unknown
// stages have none.
func (p Pipeline) Next(id string) (string, bool) {
	i := p.index(id)
	if i < 0 || i == len(p.Stages)-1 {
		return "", false
	}
	return p.Stages[i+1].ID, true
}

// First returns the ID of the stage new tasks enter.
func (p Pipeline) First() string {
	if len(p.Stages) == 0 {
		return ""
	}
	return p.Stages[0].ID
}

// Last returns the ID of the terminal stage.
func (p Pipeline) Last() string {
	if len(p.Stages) == 0 {
		return ""
	}
	return p.Stages[len(p.Stages)-1].ID
}

// InitialBoard returns an empty board with one column per stage.
func (p Pipeline) InitialBoard() Board {
	b := Board{
		Tasks:       map[string]Task{},
		Columns:     make(map[string]Column, len(p.Stages)),
		ColumnOrder: p.IDs(),
	}
	for _, s := range p.Stages {
		b.Columns[s.ID] = Column{ID: s.ID, Title: s.Title, TaskIDs: []string{}}
	}
	return b
}

func (p Pipeline) index(id string) int {
	for i, s := range p.Stages {
		if s.ID == id {
			return i
		}
	}
	return -1
}
