package http

import (
	"time"

	"github.com/anhtran/folio-api/internal/domain/inbox"
	"github.com/anhtran/folio-api/internal/domain/portfolio"
)

// Portfolio DTOs

type AdminPortfolioResponse struct {
	PortfolioData portfolio.Data `json:"portfolioData"`
	Revision      int64          `json:"revision"`
	Loading       bool           `json:"loading"`
}

type UpdatePersonalInfoRequest struct {
	Name         string `json:"name" binding:"required"`
	Title        string `json:"title"`
	Bio          string `json:"bio"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	ProfileImage string `json:"profileImage"`
}

func (r *UpdatePersonalInfoRequest) ToDomain() portfolio.PersonalInfo {
	return portfolio.PersonalInfo{
		Name:         r.Name,
		Title:        r.Title,
		Bio:          r.Bio,
		Email:        r.Email,
		Phone:        r.Phone,
		Location:     r.Location,
		ProfileImage: r.ProfileImage,
	}
}

type SaveProjectRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	Image        string   `json:"image"`
	Link         string   `json:"link"`
	Technologies []string `json:"technologies"`
}

func (r *SaveProjectRequest) ToDomain(id string) portfolio.Project {
	return portfolio.Project{
		ID:           id,
		Title:        r.Title,
		Description:  r.Description,
		Image:        r.Image,
		Link:         r.Link,
		Technologies: r.Technologies,
	}
}

type SaveEducationRequest struct {
	Institution string `json:"institution" binding:"required"`
	Degree      string `json:"degree" binding:"required"`
	Year        string `json:"year" binding:"required"`
	Description string `json:"description"`
}

func (r *SaveEducationRequest) ToDomain(id string) portfolio.Education {
	return portfolio.Education{
		ID:          id,
		Institution: r.Institution,
		Degree:      r.Degree,
		Year:        r.Year,
		Description: r.Description,
	}
}

type SkillRequest struct {
	Skill string `json:"skill" binding:"required"`
}

// Inbox DTOs

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

type MessageDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

func ToMessageDTO(m *inbox.Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID.String(),
		Name:      m.Name,
		Email:     m.Email,
		Message:   m.Body,
		Timestamp: m.Timestamp,
		Read:      m.Read,
	}
}

func ToMessageDTOs(messages []*inbox.Message) []MessageDTO {
	dtos := make([]MessageDTO, len(messages))
	for i, m := range messages {
		dtos[i] = ToMessageDTO(m)
	}
	return dtos
}
