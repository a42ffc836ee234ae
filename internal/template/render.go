package template

import (
	"strconv"
	"strings"
)

// Render evaluates nodes against ctx using reg to resolve filters,
// writing into a geometrically-grown buffer and returning the result as a
// freshly allocated string the caller owns.
func Render(nodes []Node, ctx Context, reg *Registry) (string, error) {
	var buf strings.Builder
	if err := renderNodes(&buf, nodes, ctx, reg); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderNodes(buf *strings.Builder, nodes []Node, ctx Context, reg *Registry) error {
	for _, n := range nodes {
		if err := renderNode(buf, n, ctx, reg); err != nil {
			return err
		}
	}
	return nil
}

func renderNode(buf *strings.Builder, n Node, ctx Context, reg *Registry) error {
	switch node := n.(type) {
	case *LiteralNode:
		buf.WriteString(node.Text)
		return nil

	case *VarNode:
		value, ok := ctx.stringOf(node.Name)
		if !ok {
			if _, isSeq := ctx[node.Name]; isSeq && len(node.Filters) > 0 {
				return &FilterTypeMismatchError{Filter: node.Filters[0].Name, Kind: "sequence"}
			}
			value = "" // unknown variable evaluates to empty string, per spec.md §4.5
		}
		for _, fc := range node.Filters {
			fn, err := reg.Lookup(fc.Name)
			if err != nil {
				return err
			}
			value, err = fn(value, fc.Arg)
			if err != nil {
				return err
			}
		}
		buf.WriteString(value)
		return nil

	case *IfNode:
		if ctx.truthy(node.Var) {
			return renderNodes(buf, node.Body, ctx, reg)
		}
		return nil

	case *ForNode:
		seq, ok := ctx.sequenceOf(node.Seq)
		if !ok {
			return nil
		}
		for i, elem := range seq {
			loopCtx := make(Context, len(ctx)+2)
			for k, v := range ctx {
				loopCtx[k] = v
			}
			loopCtx[node.Var] = StringValue(elem)
			loopCtx["loop.index"] = StringValue(strconv.Itoa(i + 1))
			if err := renderNodes(buf, node.Body, loopCtx, reg); err != nil {
				return err
			}
		}
		return nil

	default:
		return nil
	}
}
