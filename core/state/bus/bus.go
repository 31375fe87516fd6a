package bus

// Bus connects state modules without import cycles.
type Bus struct {
	checker Checker
	token   Token
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) SetChecker(checker Checker) {
	b.checker = checker
}

func (b *Bus) Checker() Checker {
	return b.checker
}

func (b *Bus) SetToken(token Token) {
	b.token = token
}

func (b *Bus) Token() Token {
	return b.token
}
