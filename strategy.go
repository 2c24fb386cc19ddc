package docpager

import "strings"

// Strategy names a pagination implementation.
type Strategy string

const (
	StrategyCursor Strategy = "cursor"
	StrategyRelay  Strategy = "relay"
	StrategyOffset Strategy = "offset"
)

// ParseStrategy resolves a strategy name case-insensitively. An empty name is
// StrategyCursor.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(name))); s {
	case "":
		return StrategyCursor, nil
	case StrategyCursor, StrategyRelay, StrategyOffset:
		return s, nil
	default:
		return s, &InvalidPaginationStrategyError{Strategy: s}
	}
}

// Factory builds a paginator for a store and an ordering.
type Factory[T any] func(store Store[T], fields SortFields, getters Getters[T]) Paginator[T]

// Strategies is a lookup table of pagination implementations. It is built by
// the caller and handed to whatever serves pages, e.g.:
//
//	strategies := docpager.DefaultStrategies[models.Article]()
//	strategies[docpager.StrategyCursor] = myFactory
type Strategies[T any] map[Strategy]Factory[T]

// DefaultStrategies returns the table of the built-in implementations.
func DefaultStrategies[T any]() Strategies[T] {
	return Strategies[T]{
		StrategyCursor: func(store Store[T], fields SortFields, getters Getters[T]) Paginator[T] {
			return NewCursorPaginator(store, fields).WithGetters(getters)
		},
		StrategyRelay: func(store Store[T], fields SortFields, getters Getters[T]) Paginator[T] {
			return NewRelayPaginator(store, fields).WithGetters(getters)
		},
		StrategyOffset: func(store Store[T], fields SortFields, _ Getters[T]) Paginator[T] {
			return NewOffsetPaginator(store, fields)
		},
	}
}

// Get returns the factory registered for strategy.
func (s Strategies[T]) Get(strategy Strategy) (Factory[T], error) {
	factory, ok := s[strategy]
	if !ok || factory == nil {
		return nil, &InvalidPaginationStrategyError{Strategy: strategy}
	}

	return factory, nil
}

// Paginator builds the paginator registered for strategy.
func (s Strategies[T]) Paginator(strategy Strategy, store Store[T], fields SortFields, getters Getters[T]) (Paginator[T], error) {
	factory, err := s.Get(strategy)
	if err != nil {
		return nil, err
	}

	return factory(store, fields, getters), nil
}
