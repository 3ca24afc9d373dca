package unsplash

import "github.com/lumen-gallery/lumen/internal/domain"

// mapPhotos converts API photo records to domain images.
func mapPhotos(photos []photoDTO) []domain.Image {
	images := make([]domain.Image, 0, len(photos))
	for _, p := range photos {
		images = append(images, mapPhoto(p))
	}
	return images
}

func mapPhoto(p photoDTO) domain.Image {
	return domain.Image{
		ID:             p.ID,
		Description:    deref(p.Description),
		AltDescription: deref(p.AltDescription),
		CreatedAt:      p.CreatedAt,
		URLs: domain.ImageURLs{
			Small:   p.URLs.Small,
			Regular: p.URLs.Regular,
		},
		Author: domain.Author{Name: p.User.Name},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
