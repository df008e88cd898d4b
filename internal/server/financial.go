package server

import (
	"net/http"

	"github.com/Veraticus/life-sheet/internal/api"
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleCreateProfile(c *gin.Context) {
	var body api.Profile
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	p, err := s.store.CreateProfile(c.Request.Context(), session(c), body.Model())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{api.KeyProfile: api.NewProfile(*p)})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	p, err := s.store.GetProfile(c.Request.Context(), session(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{api.KeyProfile: api.NewProfile(*p)})
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var body api.Profile
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	p, err := s.store.UpdateProfile(c.Request.Context(), session(c), c.Param("id"), body.Model())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{api.KeyProfile: api.NewProfile(*p)})
}

// entryHandlers serves one of the goal, expense and loan collections.
type entryHandlers struct {
	s    *Server
	kind model.EntryKind
}

func (h entryHandlers) list(c *gin.Context) {
	entries, err := h.s.store.ListEntries(c.Request.Context(), session(c), h.kind)
	if err != nil {
		h.s.respondError(c, err)
		return
	}
	out := make([]api.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, api.NewEntry(e))
	}
	c.JSON(http.StatusOK, gin.H{api.Resource(h.kind): out})
}

func (h entryHandlers) create(c *gin.Context) {
	var body api.Entry
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	e, err := h.s.store.CreateEntry(c.Request.Context(), session(c), body.Model(h.kind))
	if err != nil {
		h.s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{api.Key(h.kind): api.NewEntry(*e)})
}

func (h entryHandlers) update(c *gin.Context) {
	var body api.Entry
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	e, err := h.s.store.UpdateEntry(c.Request.Context(), session(c), c.Param("id"), body.Model(h.kind))
	if err != nil {
		h.s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{api.Key(h.kind): api.NewEntry(*e)})
}

func (h entryHandlers) remove(c *gin.Context) {
	if err := h.s.store.DeleteEntry(c.Request.Context(), session(c), h.kind, c.Param("id")); err != nil {
		h.s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.kind.Title() + " deleted successfully"})
}

func (s *Server) handleSaveScenario(c *gin.Context) {
	var body api.Scenario
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	sc, err := s.store.SaveScenario(c.Request.Context(), session(c), body.Model())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{api.KeyScenario: api.NewScenario(*sc)})
}

func (s *Server) handleListScenarios(c *gin.Context) {
	list, err := s.store.ListScenarios(c.Request.Context(), session(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]api.Scenario, 0, len(list))
	for _, sc := range list {
		out = append(out, api.NewScenario(sc))
	}
	c.JSON(http.StatusOK, gin.H{api.KeyScenarios: out})
}
