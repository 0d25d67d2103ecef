package domain

// to iterate thru layers: handler -> service -> storage
type UserCreationData struct {
	Name  UserName
	Image string
}

type User struct {
	Id        UserId     `json:"id"`
	Name      UserName   `json:"name"`
	Image     string     `json:"image"`
	ThreadIds []ThreadId `json:"thread_ids"` // creation order
}

// UserSummary is the author projection attached to threads
type UserSummary struct {
	Id    UserId   `json:"id"`
	Name  UserName `json:"name"`
	Image string   `json:"image"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{Id: u.Id, Name: u.Name, Image: u.Image}
}
