package plan

import (
	"fmt"

	"github.com/xiaobogaga/logquery/common"
)

// PhysicalPlanCreator allocates the synthetic names literals are hoisted
// under. It is single use and single threaded: one creator per compilation,
// threaded explicitly through the recursive lowering so lowering stays pure
// and testable. Names come out in the fixed left-to-right depth-first order
// of the recursion; after lowering, the counter equals the number of
// constant expressions in the tree.
type PhysicalPlanCreator struct {
	counter    int
	dataSource common.DataSource
}

func NewPhysicalPlanCreator(dataSource common.DataSource) *PhysicalPlanCreator {
	return &PhysicalPlanCreator{dataSource: dataSource}
}

func (creator *PhysicalPlanCreator) NewConstantName() common.VariableName {
	name := fmt.Sprintf("const_%09d", creator.counter)
	creator.counter++
	return name
}

func (creator *PhysicalPlanCreator) Counter() int {
	return creator.counter
}

func (creator *PhysicalPlanCreator) DataSource() common.DataSource {
	return creator.dataSource
}
