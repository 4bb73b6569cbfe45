package domain

var Tables = []interface{}{
	&Category{},
	&Product{},
	&TeamMember{},
	&Certificate{},
	&Contact{},
	&Message{},
}
