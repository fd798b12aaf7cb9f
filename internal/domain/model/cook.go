package model

// Cook is a seller preparing orders (a "yemma").
type Cook struct {
	ID        string
	Name      string
	PushToken string
}
