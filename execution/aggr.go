package execution

import (
	"fmt"
	"math"
	"sort"

	"github.com/axiomhq/hyperloglog"
	"github.com/influxdata/tdigest"
	"github.com/xiaobogaga/logquery/common"
)

// approxCountDistinctPrecision is the register width of the distinct-count
// sketch. With 2^14 registers the standard error of the estimate is about
// 1.04/sqrt(2^14) ~= 0.81%.
const approxCountDistinctPrecision = 14

// approxPercentileCompression bounds the t-digest size. 100 keeps the rank
// error of mid percentiles within roughly 1% while extreme percentiles stay
// much tighter.
const approxPercentileCompression = 100

// Aggregate is one stateful accumulator. Update observes one row's merged
// environment, Value finalizes. Clone returns a zero-state copy carrying the
// same configuration, used by GroupBy to give every bucket its own state.
type Aggregate interface {
	Update(variables common.Variables) error
	Value() (common.Value, error)
	Clone() Aggregate
	String() string
}

// NamedAggregate pairs an accumulator with an optional output alias.
type NamedAggregate struct {
	Aggregate Aggregate
	Name      common.VariableName
}

func NewNamedAggregate(aggregate Aggregate, name common.VariableName) NamedAggregate {
	return NamedAggregate{Aggregate: aggregate, Name: name}
}

func (named NamedAggregate) FieldName() common.VariableName {
	if named.Name != "" {
		return named.Name
	}
	return named.Aggregate.String()
}

func (named NamedAggregate) Clone() NamedAggregate {
	return NamedAggregate{Aggregate: named.Aggregate.Clone(), Name: named.Name}
}

// operandValue evaluates a unary aggregate operand. The second return is
// false for Star, which carries no value.
func operandValue(named Named, variables common.Variables) (common.Value, bool, error) {
	expr, ok := named.(NamedExpr)
	if !ok {
		return common.Value{}, false, nil
	}
	value, err := expr.Expr.Evaluate(variables)
	if err != nil {
		return common.Value{}, false, err
	}
	return value, true, nil
}

func requireOperandValue(name string, named Named, variables common.Variables) (common.Value, error) {
	value, ok, err := operandValue(named, variables)
	if err != nil {
		return common.Value{}, err
	}
	if !ok {
		return common.Value{}, fmt.Errorf("%w: %s(*) is not defined", common.ErrTypeMismatch, name)
	}
	return value, nil
}

type SumAggregate struct {
	Named    Named
	sumInt   int64
	sumFloat float64
	isFloat  bool
	count    int64
}

func NewSumAggregate(named Named) *SumAggregate {
	return &SumAggregate{Named: named}
}

func (sum *SumAggregate) Update(variables common.Variables) error {
	value, err := requireOperandValue("sum", sum.Named, variables)
	if err != nil {
		return err
	}
	switch value.TP {
	case common.Int:
		sum.sumInt += value.IntVal
	case common.Float:
		sum.isFloat = true
		sum.sumFloat += value.FloatVal
	default:
		return fmt.Errorf("%w: sum over %s", common.ErrTypeMismatch, value.TP)
	}
	sum.count++
	return nil
}

func (sum *SumAggregate) Value() (common.Value, error) {
	if sum.count == 0 {
		return common.Value{}, fmt.Errorf("%w: sum over zero rows", common.ErrAggregateDomain)
	}
	if sum.isFloat {
		return common.NewFloatValue(sum.sumFloat + float64(sum.sumInt)), nil
	}
	return common.NewIntValue(sum.sumInt), nil
}

func (sum *SumAggregate) Clone() Aggregate {
	return NewSumAggregate(sum.Named)
}

func (sum *SumAggregate) String() string {
	return fmt.Sprintf("sum(%s)", sum.Named)
}

type CountAggregate struct {
	Named Named
	count int64
}

func NewCountAggregate(named Named) *CountAggregate {
	return &CountAggregate{Named: named}
}

// Count counts rows regardless of their value, including count(*). The
// operand is still evaluated so an undefined column surfaces instead of
// being silently counted.
func (count *CountAggregate) Update(variables common.Variables) error {
	_, _, err := operandValue(count.Named, variables)
	if err != nil {
		return err
	}
	count.count++
	return nil
}

func (count *CountAggregate) Value() (common.Value, error) {
	return common.NewIntValue(count.count), nil
}

func (count *CountAggregate) Clone() Aggregate {
	return NewCountAggregate(count.Named)
}

func (count *CountAggregate) String() string {
	return fmt.Sprintf("count(%s)", count.Named)
}

type AvgAggregate struct {
	Named Named
	sum   float64
	count int64
}

func NewAvgAggregate(named Named) *AvgAggregate {
	return &AvgAggregate{Named: named}
}

func (avg *AvgAggregate) Update(variables common.Variables) error {
	value, err := requireOperandValue("avg", avg.Named, variables)
	if err != nil {
		return err
	}
	f, err := value.AsFloat()
	if err != nil {
		return err
	}
	avg.sum += f
	avg.count++
	return nil
}

func (avg *AvgAggregate) Value() (common.Value, error) {
	if avg.count == 0 {
		return common.Value{}, fmt.Errorf("%w: avg over zero rows", common.ErrAggregateDomain)
	}
	return common.NewFloatValue(avg.sum / float64(avg.count)), nil
}

func (avg *AvgAggregate) Clone() Aggregate {
	return NewAvgAggregate(avg.Named)
}

func (avg *AvgAggregate) String() string {
	return fmt.Sprintf("avg(%s)", avg.Named)
}

type MinAggregate struct {
	Named Named
	best  common.Value
	seen  bool
}

func NewMinAggregate(named Named) *MinAggregate {
	return &MinAggregate{Named: named}
}

func (min *MinAggregate) Update(variables common.Variables) error {
	value, err := requireOperandValue("min", min.Named, variables)
	if err != nil {
		return err
	}
	if !min.seen {
		min.best, min.seen = value, true
		return nil
	}
	cmp, err := value.Compare(min.best)
	if err != nil {
		return err
	}
	if cmp < 0 {
		min.best = value
	}
	return nil
}

func (min *MinAggregate) Value() (common.Value, error) {
	if !min.seen {
		return common.Value{}, fmt.Errorf("%w: min over zero rows", common.ErrAggregateDomain)
	}
	return min.best, nil
}

func (min *MinAggregate) Clone() Aggregate {
	return NewMinAggregate(min.Named)
}

func (min *MinAggregate) String() string {
	return fmt.Sprintf("min(%s)", min.Named)
}

type MaxAggregate struct {
	Named Named
	best  common.Value
	seen  bool
}

func NewMaxAggregate(named Named) *MaxAggregate {
	return &MaxAggregate{Named: named}
}

func (max *MaxAggregate) Update(variables common.Variables) error {
	value, err := requireOperandValue("max", max.Named, variables)
	if err != nil {
		return err
	}
	if !max.seen {
		max.best, max.seen = value, true
		return nil
	}
	cmp, err := value.Compare(max.best)
	if err != nil {
		return err
	}
	if cmp > 0 {
		max.best = value
	}
	return nil
}

func (max *MaxAggregate) Value() (common.Value, error) {
	if !max.seen {
		return common.Value{}, fmt.Errorf("%w: max over zero rows", common.ErrAggregateDomain)
	}
	return max.best, nil
}

func (max *MaxAggregate) Clone() Aggregate {
	return NewMaxAggregate(max.Named)
}

func (max *MaxAggregate) String() string {
	return fmt.Sprintf("max(%s)", max.Named)
}

type FirstAggregate struct {
	Named Named
	value common.Value
	seen  bool
}

func NewFirstAggregate(named Named) *FirstAggregate {
	return &FirstAggregate{Named: named}
}

func (first *FirstAggregate) Update(variables common.Variables) error {
	value, err := requireOperandValue("first", first.Named, variables)
	if err != nil {
		return err
	}
	if !first.seen {
		first.value, first.seen = value, true
	}
	return nil
}

func (first *FirstAggregate) Value() (common.Value, error) {
	if !first.seen {
		return common.Value{}, fmt.Errorf("%w: first over zero rows", common.ErrAggregateDomain)
	}
	return first.value, nil
}

func (first *FirstAggregate) Clone() Aggregate {
	return NewFirstAggregate(first.Named)
}

func (first *FirstAggregate) String() string {
	return fmt.Sprintf("first(%s)", first.Named)
}

type LastAggregate struct {
	Named Named
	value common.Value
	seen  bool
}

func NewLastAggregate(named Named) *LastAggregate {
	return &LastAggregate{Named: named}
}

func (last *LastAggregate) Update(variables common.Variables) error {
	value, err := requireOperandValue("last", last.Named, variables)
	if err != nil {
		return err
	}
	last.value, last.seen = value, true
	return nil
}

func (last *LastAggregate) Value() (common.Value, error) {
	if !last.seen {
		return common.Value{}, fmt.Errorf("%w: last over zero rows", common.ErrAggregateDomain)
	}
	return last.value, nil
}

func (last *LastAggregate) Clone() Aggregate {
	return NewLastAggregate(last.Named)
}

func (last *LastAggregate) String() string {
	return fmt.Sprintf("last(%s)", last.Named)
}

// ApproxCountDistinctAggregate estimates the number of distinct operand
// values in bounded memory. See approxCountDistinctPrecision for the error
// bound.
type ApproxCountDistinctAggregate struct {
	Named  Named
	sketch *hyperloglog.Sketch
}

func NewApproxCountDistinctAggregate(named Named) *ApproxCountDistinctAggregate {
	return &ApproxCountDistinctAggregate{Named: named, sketch: hyperloglog.New14()}
}

func (distinct *ApproxCountDistinctAggregate) Update(variables common.Variables) error {
	value, err := requireOperandValue("approx_count_distinct", distinct.Named, variables)
	if err != nil {
		return err
	}
	distinct.sketch.Insert(value.Encode())
	return nil
}

func (distinct *ApproxCountDistinctAggregate) Value() (common.Value, error) {
	return common.NewIntValue(int64(distinct.sketch.Estimate())), nil
}

func (distinct *ApproxCountDistinctAggregate) Clone() Aggregate {
	return NewApproxCountDistinctAggregate(distinct.Named)
}

func (distinct *ApproxCountDistinctAggregate) String() string {
	return fmt.Sprintf("approx_count_distinct(%s)", distinct.Named)
}

// PercentileDiscAggregate is the exact discrete percentile: it buffers every
// observed value of the target column, sorts per the given ordering and
// selects the element at rank ceil(percentile * (n-1)).
type PercentileDiscAggregate struct {
	Percentile float64
	Column     common.VariableName
	Ordering   Ordering
	values     []common.Value
}

func NewPercentileDiscAggregate(percentile float64, column common.VariableName, ordering Ordering) *PercentileDiscAggregate {
	return &PercentileDiscAggregate{Percentile: percentile, Column: column, Ordering: ordering}
}

func (percentile *PercentileDiscAggregate) Update(variables common.Variables) error {
	value, ok := variables[percentile.Column]
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrUndefinedVariable, percentile.Column)
	}
	percentile.values = append(percentile.values, value)
	return nil
}

func (percentile *PercentileDiscAggregate) Value() (common.Value, error) {
	if percentile.Percentile < 0 || percentile.Percentile > 1 {
		return common.Value{}, fmt.Errorf("%w: percentile %f outside [0, 1]", common.ErrAggregateDomain, percentile.Percentile)
	}
	n := len(percentile.values)
	if n == 0 {
		return common.Value{}, fmt.Errorf("%w: percentile_disc over zero rows", common.ErrAggregateDomain)
	}
	var sortErr error
	sort.SliceStable(percentile.values, func(i, j int) bool {
		cmp, err := percentile.values[i].Compare(percentile.values[j])
		if err != nil && sortErr == nil {
			sortErr = err
		}
		if percentile.Ordering == Desc {
			return cmp > 0
		}
		return cmp < 0
	})
	if sortErr != nil {
		return common.Value{}, sortErr
	}
	rank := int(math.Ceil(percentile.Percentile * float64(n-1)))
	return percentile.values[rank], nil
}

func (percentile *PercentileDiscAggregate) Clone() Aggregate {
	return NewPercentileDiscAggregate(percentile.Percentile, percentile.Column, percentile.Ordering)
}

func (percentile *PercentileDiscAggregate) String() string {
	return fmt.Sprintf("percentile_disc(%v, %s %s)", percentile.Percentile, percentile.Column, percentile.Ordering)
}

// ApproxPercentileAggregate is the streaming percentile: a t-digest sketch
// replaces full buffering. See approxPercentileCompression for the accuracy
// trade-off.
type ApproxPercentileAggregate struct {
	Percentile float64
	Column     common.VariableName
	Ordering   Ordering
	digest     *tdigest.TDigest
	count      int64
}

func NewApproxPercentileAggregate(percentile float64, column common.VariableName, ordering Ordering) *ApproxPercentileAggregate {
	return &ApproxPercentileAggregate{
		Percentile: percentile,
		Column:     column,
		Ordering:   ordering,
		digest:     tdigest.NewWithCompression(approxPercentileCompression),
	}
}

func (percentile *ApproxPercentileAggregate) Update(variables common.Variables) error {
	value, ok := variables[percentile.Column]
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrUndefinedVariable, percentile.Column)
	}
	f, err := value.AsFloat()
	if err != nil {
		return err
	}
	percentile.digest.Add(f, 1)
	percentile.count++
	return nil
}

func (percentile *ApproxPercentileAggregate) Value() (common.Value, error) {
	if percentile.Percentile < 0 || percentile.Percentile > 1 {
		return common.Value{}, fmt.Errorf("%w: percentile %f outside [0, 1]", common.ErrAggregateDomain, percentile.Percentile)
	}
	if percentile.count == 0 {
		return common.Value{}, fmt.Errorf("%w: approx_percentile over zero rows", common.ErrAggregateDomain)
	}
	quantile := percentile.Percentile
	if percentile.Ordering == Desc {
		quantile = 1 - quantile
	}
	return common.NewFloatValue(percentile.digest.Quantile(quantile)), nil
}

func (percentile *ApproxPercentileAggregate) Clone() Aggregate {
	return NewApproxPercentileAggregate(percentile.Percentile, percentile.Column, percentile.Ordering)
}

func (percentile *ApproxPercentileAggregate) String() string {
	return fmt.Sprintf("approx_percentile(%v, %s %s)", percentile.Percentile, percentile.Column, percentile.Ordering)
}
