package shared

// AggregateRoot is an entity that guards its own invariants, carries an
// optimistic-lock version and collects domain events until they are published.
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot is embedded by every aggregate.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int           `gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
	modified     bool          `gorm:"-"`
}

func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// MarkModified touches the timestamp and bumps the version once per unit
// of work. Every state-changing method on an aggregate ends with it.
func (a *BaseAggregateRoot) MarkModified() {
	a.Touch()
	if !a.modified {
		a.IncrementVersion()
		a.modified = true
	}
}

// PersistedVersion is the version the stored row is expected to carry.
// Repositories use it as the optimistic-lock guard on update.
func (a *BaseAggregateRoot) PersistedVersion() int {
	if a.modified {
		return a.Version - 1
	}
	return a.Version
}

// MarkPersisted is called by repositories after a successful write.
func (a *BaseAggregateRoot) MarkPersisted() {
	a.modified = false
}

// NewBaseAggregateRoot returns a version-1 aggregate root with a fresh ID.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}
