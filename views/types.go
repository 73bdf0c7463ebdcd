package views

// Site holds the site-wide settings every page is rendered with.
type Site struct {
	Name        string
	Description string
	URL         string
}

// NavItem is one link in the header navigation.
type NavItem struct {
	Label string
	Href  string
}

// Nav is the header navigation, in display order.
var Nav = []NavItem{
	{Label: "Home", Href: "/"},
	{Label: "Blogs", Href: "/blogs/"},
	{Label: "About", Href: "/about/"},
	{Label: "FAQ", Href: "/faq/"},
}

// page is the data every template receives. Data is page specific.
type page struct {
	Site   Site
	Title  string
	Active string
	Nav    []NavItem
	Year   int
	Data   any
}
