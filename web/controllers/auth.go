package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/omegeangel1/project-2-sub000/discord"
	"github.com/omegeangel1/project-2-sub000/store"
)

const guildJoinTimeout = 10 * time.Second

// ExchangeCode runs the login pipeline: code -> token -> profile -> guild
// join. The first two steps are fatal for the request; the join is
// best-effort and only annotates the response.
func (ct *Controller) ExchangeCode(c *gin.Context) {
	var body struct {
		Code    string `json:"code"`
		GuildID string `json:"guildId"`
	}
	if err := c.BindJSON(&body); err != nil || body.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	ctx := c.Request.Context()

	token, err := ct.Discord.ExchangeCode(ctx, body.Code)
	if err != nil {
		var te *discord.TokenExchangeError
		if errors.As(err, &te) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Token exchange failed", "details": te.Detail})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error during login"})
		return
	}

	identity, err := ct.Discord.FetchIdentity(ctx, token.AccessToken)
	if err != nil {
		var fe *discord.IdentityFetchError
		if errors.As(err, &fe) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to fetch Discord profile", "details": fe.Detail})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error during login"})
		return
	}

	guildID := body.GuildID
	if guildID == "" {
		guildID = ct.Cfg.DiscordGuildID
	}

	// run the join aside so a slow provider call cannot hold the login
	joinCh := make(chan discord.JoinResult, 1)
	go func() {
		joinCh <- ct.Discord.JoinGuild(context.Background(), guildID, identity.ID, token.AccessToken)
	}()

	join := discord.JoinResult{Message: "Timed out adding you to the Discord server, please use the invite link"}
	select {
	case join = <-joinCh:
	case <-time.After(guildJoinTimeout):
	}
	if !join.Success {
		log.Printf("auth: guild join for %s: %s", identity.ID, join.Message)
	}

	sessionUser := sessionIdentity(identity)
	ct.Sessions.SetAuth(sessionUser, token.AccessToken)

	if _, ok := ct.Store.GetUserByDiscordID(identity.ID); !ok {
		ct.Store.CreateUser(identity.ID, identity.Username, identity.Email)
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        identity,
		"accessToken": token.AccessToken,
		"serverJoin":  join,
	})
}

// Me reports the current session with the derived display fields.
func (ct *Controller) Me(c *gin.Context) {
	st := ct.Sessions.GetAuthState()
	if !st.IsAuthenticated || st.User == nil {
		c.JSON(http.StatusOK, gin.H{"isAuthenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"isAuthenticated": true,
		"user":            st.User,
		"displayName":     st.User.DisplayName(),
		"username":        st.User.CanonicalUsername(),
		"avatarUrl":       st.User.AvatarURL(),
	})
}

func (ct *Controller) Logout(c *gin.Context) {
	ct.Sessions.ClearAuth()
	c.JSON(http.StatusOK, gin.H{})
}

func sessionIdentity(id *discord.Identity) store.DiscordIdentity {
	return store.DiscordIdentity{
		ID:            id.ID,
		Username:      id.Username,
		Discriminator: id.Discriminator,
		GlobalName:    id.GlobalName,
		Avatar:        id.Avatar,
		Email:         id.Email,
		Verified:      id.Verified,
	}
}
