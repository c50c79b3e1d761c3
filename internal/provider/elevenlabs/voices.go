package elevenlabs

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lexio-app/lexio/internal/provider"
)

// Voice is a selectable speaker.
type Voice struct {
	ID          string `json:"voice_id"`
	Name        string `json:"name"`
	Gender      string `json:"gender,omitempty"`
	Accent      string `json:"accent,omitempty"`
	Description string `json:"description,omitempty"`
	PreviewURL  string `json:"preview_url,omitempty"`
}

// PopularVoices is the curated catalog offered to the listener.
var PopularVoices = []Voice{
	{ID: "4tRn1lSkEn13EVTuqb0g", Name: "Serafina", Gender: "female", Accent: "american", Description: "Warm and expressive"},
	{ID: "kdmDKE6EkgrWrrykO9Qt", Name: "Alexandra", Gender: "female", Accent: "american", Description: "Super realistic, young female voice that likes to chat"},
	{ID: "L0Dsvb3SLTyegXwtm47J", Name: "Archer", Gender: "male", Accent: "british", Description: "Grounded and friendly young British male with charm"},
	{ID: "g6xIsTj2HwM6VR4iXFCw", Name: "Jessica Anne Bogart", Gender: "female", Accent: "american", Description: "Empathetic and expressive, great for wellness coaches"},
	{ID: "OYTbf65OHHFELVut7v2H", Name: "Hope", Gender: "female", Accent: "american", Description: "Bright and uplifting, perfect for positive interactions"},
	{ID: "dj3G1R1ilKoFKhBnWOzG", Name: "Eryn", Gender: "female", Accent: "american", Description: "Friendly and relatable, ideal for casual interactions"},
	{ID: "HDA9tsk27wYi3uq0fPcK", Name: "Stuart", Gender: "male", Accent: "australian", Description: "Professional & friendly Aussie, ideal for technical assistance"},
	{ID: "1SM7GgM6IMuvQlz2BwM3", Name: "Mark", Gender: "male", Accent: "american", Description: "Relaxed and laid back, suitable for nonchalant chats"},
	{ID: "PT4nqlKZfc06VW1BuClj", Name: "Angela", Gender: "female", Accent: "american", Description: "Raw and relatable, great listener and down to earth"},
	{ID: "vBKc2FfBKJfcZNyEt1n6", Name: "Finn", Gender: "male", Accent: "american", Description: "Tenor pitched, excellent for podcasts and light chats"},
	{ID: "56AoDkrOh6qfVPDXZ7Pt", Name: "Cassidy", Gender: "female", Accent: "american", Description: "Engaging and energetic, good for entertainment contexts"},
}

// FindVoice returns the catalog entry for id.
func FindVoice(voices []Voice, id string) (Voice, bool) {
	for _, v := range voices {
		if v.ID == id {
			return v, true
		}
	}
	return Voice{}, false
}

type apiVoice struct {
	ID         string `json:"voice_id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	PreviewURL string `json:"preview_url"`
}

// Voices returns the popular catalog, refreshed with names and preview URLs
// from the account's voice list. Any API failure is logged and the static
// catalog returned.
func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	remote, err := c.fetchVoices(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("Unable to fetch voices, using built-in list", "error", err)
		return append([]Voice(nil), PopularVoices...), nil
	}
	return mergeVoices(remote), nil
}

func (c *Client) fetchVoices(ctx context.Context) ([]apiVoice, error) {
	resp, err := c.api.Get(ctx, "/voices")
	if err != nil {
		return nil, err
	}
	if !provider.OK(resp) {
		return nil, provider.DecodeError(name, resp)
	}
	var out struct {
		Voices []apiVoice `json:"voices"`
	}
	if err := provider.ReadJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("voices: %w", err)
	}
	return out.Voices, nil
}

func mergeVoices(remote []apiVoice) []Voice {
	byID := make(map[string]apiVoice, len(remote))
	for _, v := range remote {
		byID[v.ID] = v
	}

	merged := make([]Voice, 0, len(PopularVoices))
	for _, pv := range PopularVoices {
		if v, ok := byID[pv.ID]; ok {
			pv.Name = v.Name
			pv.PreviewURL = v.PreviewURL
		}
		merged = append(merged, pv)
	}
	return merged
}
