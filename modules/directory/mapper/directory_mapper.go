package mapper

import (
	"slotshare/modules/directory/dto"
	"slotshare/modules/directory/entity"

	people "google.golang.org/api/people/v1"
)

// ToPerson takes the first name and email of a directory entry.
func ToPerson(p *people.Person) entity.Person {
	person := entity.Person{DisplayName: entity.NoName, Email: entity.NoEmail}
	if len(p.Names) > 0 && p.Names[0] != nil && p.Names[0].DisplayName != "" {
		person.DisplayName = p.Names[0].DisplayName
	}
	if len(p.EmailAddresses) > 0 && p.EmailAddresses[0] != nil && p.EmailAddresses[0].Value != "" {
		person.Email = p.EmailAddresses[0].Value
	}
	return person
}

func ToSearchResponse(result *entity.SearchResult) *dto.SearchResponse {
	resp := &dto.SearchResponse{People: make([]dto.PersonResponse, 0, len(result.People))}
	for _, p := range result.People {
		resp.People = append(resp.People, dto.PersonResponse{Name: p.DisplayName, Email: p.Email})
	}
	resp.NextPageToken = result.NextPageToken
	resp.Superseded = result.Superseded
	return resp
}
