package models

// FakeUser is a synthetic counterpart shown when no real partner is found
type FakeUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Country  string `json:"country"`
	VideoSrc string `json:"videoSrc"`
}

// FakeUsers is the synthetic counterpart catalog
var FakeUsers = []FakeUser{
	{ID: "fake1", Name: "Emma Wilson", Country: "USA", VideoSrc: "/videos/fake1.mp4"},
	{ID: "fake2", Name: "David Chen", Country: "Canada", VideoSrc: "/videos/fake2.mp4"},
	{ID: "fake3", Name: "Sophia Lopez", Country: "Spain", VideoSrc: "/videos/fake3.mp4"},
	{ID: "fake4", Name: "James Brown", Country: "UK", VideoSrc: "/videos/fake4.mp4"},
	{ID: "fake5", Name: "Mia Johnson", Country: "Australia", VideoSrc: "/videos/fake5.mp4"},
	{ID: "fake6", Name: "Alex Kim", Country: "South Korea", VideoSrc: "/videos/fake6.mp4"},
	{ID: "fake7", Name: "Olivia Davis", Country: "France", VideoSrc: "/videos/fake7.mp4"},
	{ID: "fake8", Name: "Mohammed Al-Farsi", Country: "UAE", VideoSrc: "/videos/fake8.mp4"},
}
