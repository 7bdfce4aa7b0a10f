package domain

import "fmt"

// Connection is a directed edge from an outlet port to an inlet port
type Connection struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// String renders the connection as "from -> to"
func (c Connection) String() string {
	return fmt.Sprintf("%s -> %s", c.From, c.To)
}

// Validate checks that the connection runs from an outlet to an inlet
func (c Connection) Validate() error {
	from, err := ParsePortID(c.From)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if from.Kind != PortOutlet {
		return fmt.Errorf("source %s is not an outlet", c.From)
	}
	to, err := ParsePortID(c.To)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if to.Kind != PortInlet {
		return fmt.Errorf("target %s is not an inlet", c.To)
	}
	return nil
}

// Involves checks if either end of the connection belongs to componentID
func (c Connection) Involves(componentID string) bool {
	return OwnerOf(c.From) == componentID || OwnerOf(c.To) == componentID
}

// Less orders connections by source then target port
func (c Connection) Less(other Connection) bool {
	if c.From != other.From {
		return c.From < other.From
	}
	return c.To < other.To
}
