package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xiaobogaga/logquery/common"
	"github.com/xiaobogaga/logquery/plan"
	"github.com/xiaobogaga/logquery/util"
)

var queryLog = util.GetLog("query")

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	File       string
	Select     string
	Where      []string
	GroupBy    string
	Aggregates []string
	OrderBy    string
	Limit      int
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run one query over an access log",
		Long: `Run one query over an access log, read from --file or stdin.

Examples:
  logquery query --file lb.log --select 'elb,elb_status_code' --where 'elb_status_code=500'
  logquery query --file lb.log --group-by elb --aggregate 'count(*) as hits' --order-by hits:desc --limit 10
  logquery query --file lb.log --aggregate 'percentile_disc(0.99,backend_processing_time)'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "access log file (stdin when omitted)")
	cmd.Flags().StringVar(&opts.Select, "select", "*", "comma separated output columns, * passes all through")
	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, "condition like 'elb_status_code>=500', repeatable (conditions are and-ed)")
	cmd.Flags().StringVar(&opts.GroupBy, "group-by", "", "comma separated grouping columns")
	cmd.Flags().StringArrayVar(&opts.Aggregates, "aggregate", nil, "aggregate like 'count(*)' or 'avg(sent_bytes) as b', repeatable")
	cmd.Flags().StringVar(&opts.OrderBy, "order-by", "", "comma separated sort columns, 'col:desc' for descending")
	cmd.Flags().IntVar(&opts.Limit, "limit", -1, "maximum number of output records")

	return cmd
}

func runQuery(opts *QueryOptions, cmd *cobra.Command) error {
	logic, source, err := buildLogicPlan(opts)
	if err != nil {
		return err
	}
	queryID := uuid.NewString()
	queryLog.DebugF("query %s: plan %s", queryID, logic)

	creator := plan.NewPhysicalPlanCreator(source)
	node, variables, err := logic.Physical(creator)
	if err != nil {
		queryLog.ErrorF("query %s: lowering failed: %s", queryID, err)
		return err
	}
	queryLog.DebugF("query %s: hoisted %d constants", queryID, creator.Counter())

	stream, err := node.Stream(variables)
	if err != nil {
		queryLog.ErrorF("query %s: %s", queryID, err)
		return err
	}
	defer stream.Close()

	out := cmd.OutOrStdout()
	count := 0
	printedHeader := false
	for {
		record, err := stream.Next()
		if err != nil {
			queryLog.ErrorF("query %s: %s", queryID, err)
			return err
		}
		if record == nil {
			break
		}
		if !printedHeader {
			fmt.Fprintln(out, strings.Join(record.FieldNames, "\t"))
			printedHeader = true
		}
		values := make([]string, len(record.Data))
		for i, value := range record.Data {
			values[i] = value.String()
		}
		fmt.Fprintln(out, strings.Join(values, "\t"))
		count++
	}
	queryLog.DebugF("query %s: %d records", queryID, count)
	return nil
}

// buildLogicPlan assembles the logical tree from flags, innermost node
// first: data source, filter, group-by or map, order-by, limit.
func buildLogicPlan(opts *QueryOptions) (plan.LogicPlan, common.DataSource, error) {
	source := common.NewStdinSource()
	if opts.File != "" {
		source = common.NewFileSource(opts.File)
	}
	var logic plan.LogicPlan = plan.DataSourceLogicPlan{Source: source, Name: "elb"}

	if len(opts.Where) > 0 {
		predicate, err := parseWhere(opts.Where)
		if err != nil {
			return nil, source, err
		}
		logic = plan.FilterLogicPlan{Predicate: predicate, Input: logic}
	}

	switch {
	case len(opts.Aggregates) > 0:
		aggregates := make([]plan.NamedAggregate, 0, len(opts.Aggregates))
		for _, s := range opts.Aggregates {
			aggregate, err := parseAggregate(s)
			if err != nil {
				return nil, source, err
			}
			aggregates = append(aggregates, aggregate)
		}
		logic = plan.GroupByLogicPlan{Fields: splitList(opts.GroupBy), Aggregates: aggregates, Input: logic}
	case opts.GroupBy != "":
		return nil, source, fmt.Errorf("--group-by requires at least one --aggregate")
	default:
		logic = plan.MapLogicPlan{NamedList: parseSelect(opts.Select), Input: logic}
	}

	if opts.OrderBy != "" {
		fields, orderings, err := parseOrderBy(opts.OrderBy)
		if err != nil {
			return nil, source, err
		}
		logic = plan.OrderByLogicPlan{Fields: fields, Orderings: orderings, Input: logic}
	}

	if opts.Limit >= 0 {
		logic = plan.LimitLogicPlan{Count: opts.Limit, Input: logic}
	}
	return logic, source, nil
}

func splitList(s string) []common.VariableName {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ret := make([]common.VariableName, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			ret = append(ret, part)
		}
	}
	return ret
}

func parseSelect(s string) []plan.Named {
	var ret []plan.Named
	for _, column := range splitList(s) {
		if column == "*" {
			ret = append(ret, plan.Star{})
			continue
		}
		ret = append(ret, plan.NamedExpr{Expr: plan.IdentifierLogicExpr{Name: column}, Alias: column})
	}
	return ret
}

func parseOrderBy(s string) ([]common.VariableName, []plan.Ordering, error) {
	var fields []common.VariableName
	var orderings []plan.Ordering
	for _, part := range splitList(s) {
		field, ordering := part, plan.Asc
		if idx := strings.LastIndex(part, ":"); idx >= 0 {
			field = strings.TrimSpace(part[:idx])
			switch strings.ToLower(strings.TrimSpace(part[idx+1:])) {
			case "asc":
			case "desc":
				ordering = plan.Desc
			default:
				return nil, nil, fmt.Errorf("cannot parse order-by '%s'", part)
			}
		}
		if field == "" {
			return nil, nil, fmt.Errorf("cannot parse order-by '%s'", part)
		}
		fields = append(fields, field)
		orderings = append(orderings, ordering)
	}
	return fields, orderings, nil
}

// relations are matched longest first so '>=' is not read as '>'.
var relations = []struct {
	op  string
	rel plan.Relation
}{
	{"!=", plan.NotEqual},
	{">=", plan.GreaterEqual},
	{"<=", plan.LessEqual},
	{"=", plan.Equal},
	{">", plan.MoreThan},
	{"<", plan.LessThan},
}

func parseWhere(conditions []string) (plan.Formula, error) {
	var ret plan.Formula
	for _, condition := range conditions {
		predicate, err := parseCondition(condition)
		if err != nil {
			return nil, err
		}
		if ret == nil {
			ret = predicate
		} else {
			ret = plan.AndFormula{Left: ret, Right: predicate}
		}
	}
	return ret, nil
}

func parseCondition(s string) (plan.Formula, error) {
	for _, relation := range relations {
		idx := strings.Index(s, relation.op)
		if idx <= 0 {
			continue
		}
		field := strings.TrimSpace(s[:idx])
		literal := strings.TrimSpace(s[idx+len(relation.op):])
		if field == "" || literal == "" {
			break
		}
		return plan.PredicateFormula{
			Rel:   relation.rel,
			Left:  plan.IdentifierLogicExpr{Name: field},
			Right: plan.ConstantLogicExpr{Value: parseLiteral(literal)},
		}, nil
	}
	return nil, fmt.Errorf("cannot parse condition '%s'", s)
}

func parseLiteral(s string) common.Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return common.NewIntValue(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return common.NewFloatValue(f)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return common.NewBoolValue(b)
	}
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return common.NewStringValue(s)
}

func parseAggregate(s string) (plan.NamedAggregate, error) {
	expr, alias := s, ""
	if idx := strings.LastIndex(s, " as "); idx > 0 {
		expr = strings.TrimSpace(s[:idx])
		alias = strings.TrimSpace(s[idx+len(" as "):])
	}
	open := strings.Index(expr, "(")
	if open <= 0 || !strings.HasSuffix(expr, ")") {
		return plan.NamedAggregate{}, fmt.Errorf("cannot parse aggregate '%s'", s)
	}
	name := strings.ToLower(strings.TrimSpace(expr[:open]))
	arg := strings.TrimSpace(expr[open+1 : len(expr)-1])

	if name == "percentile_disc" || name == "approx_percentile" {
		aggregate, err := parsePercentile(name, arg)
		if err != nil {
			return plan.NamedAggregate{}, err
		}
		return plan.NewNamedAggregate(aggregate, alias), nil
	}

	var operand plan.Named = plan.Star{}
	if arg != "*" {
		if arg == "" {
			return plan.NamedAggregate{}, fmt.Errorf("aggregate '%s' needs an argument", s)
		}
		operand = plan.NamedExpr{Expr: plan.IdentifierLogicExpr{Name: arg}, Alias: arg}
	}
	switch name {
	case "count":
		return plan.NewNamedAggregate(plan.CountAggregate{Named: operand}, alias), nil
	case "sum":
		return plan.NewNamedAggregate(plan.SumAggregate{Named: operand}, alias), nil
	case "avg":
		return plan.NewNamedAggregate(plan.AvgAggregate{Named: operand}, alias), nil
	case "min":
		return plan.NewNamedAggregate(plan.MinAggregate{Named: operand}, alias), nil
	case "max":
		return plan.NewNamedAggregate(plan.MaxAggregate{Named: operand}, alias), nil
	case "first":
		return plan.NewNamedAggregate(plan.FirstAggregate{Named: operand}, alias), nil
	case "last":
		return plan.NewNamedAggregate(plan.LastAggregate{Named: operand}, alias), nil
	case "approx_count_distinct":
		return plan.NewNamedAggregate(plan.ApproxCountDistinctAggregate{Named: operand}, alias), nil
	default:
		return plan.NamedAggregate{}, fmt.Errorf("unknown aggregate '%s'", name)
	}
}

func parsePercentile(name, arg string) (plan.Aggregate, error) {
	parts := splitList(arg)
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("%s takes (percentile, column[, desc])", name)
	}
	percentile, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("bad percentile '%s'", parts[0])
	}
	ordering := plan.Asc
	if len(parts) == 3 {
		switch strings.ToLower(parts[2]) {
		case "asc":
		case "desc":
			ordering = plan.Desc
		default:
			return nil, fmt.Errorf("bad ordering '%s'", parts[2])
		}
	}
	if name == "percentile_disc" {
		return plan.PercentileDiscAggregate{Percentile: percentile, Column: parts[1], Ordering: ordering}, nil
	}
	return plan.ApproxPercentileAggregate{Percentile: percentile, Column: parts[1], Ordering: ordering}, nil
}
