package entities

import "fmt"

// Route is an ordered, connected chain of pairs from an input to an output token.
type Route struct {
	pairs  []*Pair
	path   []*Token
	input  *Token
	output *Token
}

// NewRoute walks pairs starting from input. output may be nil; when given it
// must equal the token the walk ends on.
func NewRoute(pairs []*Pair, input, output *Token) (*Route, error) {
	if len(pairs) == 0 {
		return nil, ErrEmptyRoute
	}
	if input == nil {
		return nil, fmt.Errorf("%w: nil input token", ErrPairDoesNotInvolveToken)
	}

	chainID := input.chainID
	path := make([]*Token, 0, len(pairs)+1)
	path = append(path, input)
	current := input
	for i, pair := range pairs {
		if pair.ChainID() != chainID {
			return nil, fmt.Errorf("%w: pair %d (%s) is on chain %d, route on %d", ErrChainMismatch, i, pair.address.Hex(), pair.ChainID(), chainID)
		}
		switch {
		case current.Equals(pair.Token0()):
			current = pair.Token1()
		case current.Equals(pair.Token1()):
			current = pair.Token0()
		default:
			return nil, fmt.Errorf("%w: pair %d (%s) does not contain %s", ErrPairDoesNotInvolveToken, i, pair.address.Hex(), current)
		}
		path = append(path, current)
	}

	if output != nil && !output.Equals(current) {
		return nil, fmt.Errorf("%w: route ends at %s, not %s", ErrOutputTokenMismatch, current, output)
	}

	return &Route{
		pairs:  append([]*Pair(nil), pairs...),
		path:   path,
		input:  input,
		output: current,
	}, nil
}

func (r *Route) Input() *Token   { return r.input }
func (r *Route) Output() *Token  { return r.output }
func (r *Route) ChainID() uint64 { return r.input.chainID }
func (r *Route) Hops() int       { return len(r.pairs) }

// Pairs returns the route's pairs in order. The slice is a copy.
func (r *Route) Pairs() []*Pair { return append([]*Pair(nil), r.pairs...) }

// Path returns the tokens visited, input first. The slice is a copy.
func (r *Route) Path() []*Token { return append([]*Token(nil), r.path...) }

// MidPrice compounds each hop's mid price along the path, as output per input.
func (r *Route) MidPrice() (Price, error) {
	var mid Price
	for i, pair := range r.pairs {
		hop, err := pair.PriceOf(r.path[i])
		if err != nil {
			return Price{}, err
		}
		if i == 0 {
			mid = hop
			continue
		}
		if mid, err = mid.Multiply(hop); err != nil {
			return Price{}, err
		}
	}
	return mid, nil
}

func (r *Route) String() string {
	s := r.path[0].String()
	for _, t := range r.path[1:] {
		s += " -> " + t.String()
	}
	return s
}
