package controllers

import (
	"net/http"

	"labtrace-service/internal/app/models"
	"labtrace-service/internal/pkg/constvars"
)

func actorFromRequest(r *http.Request) (models.Actor, bool) {
	actor, ok := r.Context().Value(constvars.CONTEXT_ACTOR_KEY).(models.Actor)
	return actor, ok
}
