package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialfeed/backend/internal/auth"
	"github.com/socialfeed/backend/internal/models"
)

func TestLivenessAndHealth(t *testing.T) {
	requireDB(t)

	w := doJSON(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "API is running...", w.Body.String())

	w = doJSON(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "up", decode(t, w)["status"])
}

func TestRegisterReturnsProjectionAndToken(t *testing.T) {
	requireDB(t)

	w := doJSON(t, http.MethodPost, "/api/register", "", map[string]string{
		"name":                  "Reg User",
		"email":                 "reg-user@example.com",
		"password":              "password123",
		"password_confirmation": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	assert.NotEmpty(t, body["token"])

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "Reg User", user["name"])
	assert.Equal(t, "reg-user@example.com", user["email"])
	assert.Nil(t, user["profile_picture_url"])
	assert.NotEmpty(t, user["created_at"])

	// The credential must never appear in any read path.
	_, hasPassword := user["password"]
	assert.False(t, hasPassword)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterValidationErrors(t *testing.T) {
	requireDB(t)

	w := doJSON(t, http.MethodPost, "/api/register", "", map[string]string{
		"name":                  "Short Pass",
		"email":                 "short-pass@example.com",
		"password":              "short",
		"password_confirmation": "short",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Contains(t, body["message"], "Password must be at least 8 characters")
	assert.Len(t, body["errors"], 1)
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	requireDB(t)

	registerUser(t, "Dup One", "Dup@Example.com")

	w := doJSON(t, http.MethodPost, "/api/register", "", map[string]string{
		"name":                  "Dup Two",
		"email":                 "dup@example.COM",
		"password":              "password123",
		"password_confirmation": "password123",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User already exists", decode(t, w)["message"])
}

func TestLoginAfterRegister(t *testing.T) {
	requireDB(t)

	_, id := registerUser(t, "Login User", "Login-User@example.com")

	w := doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "login-user@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(id), body["id"])
	assert.Equal(t, "Login User", body["name"])
	assert.Equal(t, "login-user@example.com", body["email"])
	assert.NotEmpty(t, body["token"])
}

func TestLoginUniformInvalidCredentials(t *testing.T) {
	requireDB(t)

	registerUser(t, "Enum User", "enum-user@example.com")

	wrongPassword := doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "enum-user@example.com",
		"password": "wrong-password",
	})
	noSuchUser := doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "nobody-here@example.com",
		"password": "password123",
	})

	// Identical status and body: no user-enumeration signal.
	assert.Equal(t, http.StatusBadRequest, wrongPassword.Code)
	assert.Equal(t, http.StatusBadRequest, noSuchUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), noSuchUser.Body.String())
}

func TestLogout(t *testing.T) {
	requireDB(t)

	token, _ := registerUser(t, "Logout User", "logout-user@example.com")

	w := doJSON(t, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successfully logged out", decode(t, w)["message"])

	w = doJSON(t, http.MethodPost, "/api/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthGuardRejections(t *testing.T) {
	requireDB(t)

	// Missing header.
	w := doJSON(t, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Malformed header.
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	testRouter.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token.
	w = doJSON(t, http.MethodGet, "/api/profile", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Token signed with the wrong secret.
	forged, err := auth.NewTokenManager("wrong-secret", time.Hour).Issue(1)
	require.NoError(t, err)
	w = doJSON(t, http.MethodGet, "/api/profile", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token referencing a user that no longer exists.
	token, id := registerUser(t, "Ghost User", "ghost-user@example.com")
	require.NoError(t, testDB.Delete(&models.User{}, id).Error)
	w = doJSON(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePostRequiresTitleAndContent(t *testing.T) {
	requireDB(t)

	token, _ := registerUser(t, "Post Validator", "post-validator@example.com")

	w := doMultipart(t, http.MethodPost, "/api/posts", token, map[string]string{
		"title": "Only a title",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please provide both title and content", decode(t, w)["message"])
}

func TestFeedIncludesNewPostWithCountsAndAuthor(t *testing.T) {
	requireDB(t)

	token, _ := registerUser(t, "Alice", "alice@x.com")
	createPost(t, token, "Hello", "World")

	w := doJSON(t, http.MethodGet, "/api/posts?page=1&limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(10), body["limit"])

	posts := body["posts"].([]interface{})
	require.NotEmpty(t, posts)

	// Ordering is newest first, so the post just created leads the feed.
	entry := posts[0].(map[string]interface{})
	assert.Equal(t, "Hello", entry["title"])
	assert.Equal(t, "World", entry["content"])
	assert.Equal(t, float64(0), entry["commentCount"])
	assert.Equal(t, float64(0), entry["reactionCount"])
	assert.Nil(t, entry["image"])
	assert.Nil(t, entry["video"])

	author := entry["user"].(map[string]interface{})
	assert.Equal(t, "Alice", author["name"])
	assert.Equal(t, "alice@x.com", author["email"])
}

func TestUpdatePostOwnershipAndPartialUpdate(t *testing.T) {
	requireDB(t)

	ownerToken, _ := registerUser(t, "Edit Owner", "edit-owner@example.com")
	otherToken, _ := registerUser(t, "Edit Other", "edit-other@example.com")
	postID := createPost(t, ownerToken, "Original title", "Original content")

	// Missing post answers 404 even for a non-owner: existence is checked
	// before ownership.
	w := doMultipart(t, http.MethodPut, "/api/posts/999999", otherToken, map[string]string{
		"title": "whatever",
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doMultipart(t, http.MethodPut, postPath(postID, ""), otherToken, map[string]string{
		"title": "Hijacked",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized to edit this post", decode(t, w)["message"])

	w = doMultipart(t, http.MethodPut, postPath(postID, ""), ownerToken, map[string]string{
		"title": "New title",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Post updated successfully", body["message"])

	post := body["post"].(map[string]interface{})
	assert.Equal(t, "New title", post["title"])
	assert.Equal(t, "Original content", post["content"])
}

func TestDeletePostOwnershipAndCascade(t *testing.T) {
	requireDB(t)

	ownerToken, _ := registerUser(t, "Del Owner", "del-owner@example.com")
	otherToken, _ := registerUser(t, "Del Other", "del-other@example.com")
	postID := createPost(t, ownerToken, "Doomed", "Going away")

	w := doJSON(t, http.MethodPost, postPath(postID, "/comments"), otherToken, map[string]string{
		"content": "soon to be orphaned",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, http.MethodPost, postPath(postID, "/reaction"), otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, http.MethodDelete, postPath(postID, ""), otherToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized to delete this post", decode(t, w)["message"])

	w = doJSON(t, http.MethodDelete, postPath(postID, ""), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Post deleted successfully", decode(t, w)["message"])

	// No stale data: reads against the deleted post report not-found, and
	// the scoped rows are gone.
	w = doJSON(t, http.MethodGet, postPath(postID, "/comments"), ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Post not found", decode(t, w)["message"])

	w = doJSON(t, http.MethodPost, postPath(postID, "/reaction"), ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var comments, reactions int64
	testDB.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&comments)
	testDB.Model(&models.Reaction{}).Where("post_id = ?", postID).Count(&reactions)
	assert.Zero(t, comments)
	assert.Zero(t, reactions)
}

func TestCommentsEmptyListDistinctFromMissingPost(t *testing.T) {
	requireDB(t)

	token, _ := registerUser(t, "Comment Reader", "comment-reader@example.com")
	postID := createPost(t, token, "Quiet post", "No comments yet")

	// Existing post with zero comments: 404 with an explicit empty data
	// array.
	w := doJSON(t, http.MethodGet, postPath(postID, "/comments"), token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, "No comments found", body["message"])
	data, hasData := body["data"]
	assert.True(t, hasData)
	assert.Empty(t, data)

	// Missing post: 404 without the data field.
	w = doJSON(t, http.MethodGet, "/api/posts/999999/comments", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	body = decode(t, w)
	assert.Equal(t, "Post not found", body["message"])
	_, hasData = body["data"]
	assert.False(t, hasData)
}

func TestAddAndListCommentsInCreationOrder(t *testing.T) {
	requireDB(t)

	token, _ := registerUser(t, "Commenter", "commenter@example.com")
	postID := createPost(t, token, "Discussion", "Talk here")

	w := doJSON(t, http.MethodPost, postPath(postID, "/comments"), token, map[string]string{
		"content": "first",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	created := decode(t, w)
	assert.Equal(t, "first", created["content"])
	author := created["user"].(map[string]interface{})
	assert.Equal(t, "Commenter", author["name"])
	_, hasEmail := author["email"]
	assert.False(t, hasEmail)

	w = doJSON(t, http.MethodPost, postPath(postID, "/comments"), token, map[string]string{
		"content": "second",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, http.MethodGet, postPath(postID, "/comments"), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	comments := decodeList(t, w)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].(map[string]interface{})["content"])
	assert.Equal(t, "second", comments[1].(map[string]interface{})["content"])
}

func TestAddCommentValidation(t *testing.T) {
	requireDB(t)

	token, _ := registerUser(t, "Empty Commenter", "empty-commenter@example.com")
	postID := createPost(t, token, "Strict post", "No empty comments")

	w := doJSON(t, http.MethodPost, postPath(postID, "/comments"), token, map[string]string{
		"content": "   ",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Comment content is required", decode(t, w)["message"])

	w = doJSON(t, http.MethodPost, "/api/posts/999999/comments", token, map[string]string{
		"content": "hello?",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReactionToggleRoundTrip(t *testing.T) {
	requireDB(t)

	token, _ := registerUser(t, "Toggler", "toggler@example.com")
	postID := createPost(t, token, "Likeable", "Like me")

	w := doJSON(t, http.MethodPost, postPath(postID, "/reaction"), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "liked", body["status"])
	assert.Equal(t, "Reaction liked", body["message"])
	assert.Equal(t, float64(1), body["reactionCount"])

	// Two toggles return to the original state.
	w = doJSON(t, http.MethodPost, postPath(postID, "/reaction"), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "unliked", body["status"])
	assert.Equal(t, float64(0), body["reactionCount"])
}

func TestReactionInvalidAndMissingPost(t *testing.T) {
	requireDB(t)

	token, _ := registerUser(t, "Bad Reactor", "bad-reactor@example.com")

	w := doJSON(t, http.MethodPost, "/api/posts/abc/reaction", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid post ID", decode(t, w)["message"])

	w = doJSON(t, http.MethodPost, "/api/posts/999999/reaction", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConcurrentTogglesNeverDuplicate(t *testing.T) {
	requireDB(t)

	token, id := registerUser(t, "Racer", "racer@example.com")
	postID := createPost(t, token, "Contended", "Everyone toggles at once")

	const togglers = 8
	codes := make([]int, togglers)

	var wg sync.WaitGroup
	for i := 0; i < togglers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := doJSON(t, http.MethodPost, postPath(postID, "/reaction"), token, nil)
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	// Conflicts between racing toggles must be absorbed, never surfaced.
	for i, code := range codes {
		assert.Equal(t, http.StatusOK, code, "toggle %d failed", i)
	}

	// The post settles into exactly one of reacted / not-reacted.
	var rows int64
	testDB.Model(&models.Reaction{}).
		Where("post_id = ? AND user_id = ?", postID, id).
		Count(&rows)
	assert.LessOrEqual(t, rows, int64(1))
}

func TestMyPostsPagination(t *testing.T) {
	requireDB(t)

	token, _ := registerUser(t, "Paginator", "paginator@example.com")
	for i := 1; i <= 25; i++ {
		createPost(t, token, fmt.Sprintf("Post %d", i), "body")
	}

	w := doJSON(t, http.MethodGet, "/api/my-posts?page=1&limit=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(25), body["total"])
	assert.Equal(t, float64(3), body["totalPages"])
	assert.Len(t, body["posts"], 10)

	// A page past the end is empty but keeps the totals.
	w = doJSON(t, http.MethodGet, "/api/my-posts?page=4&limit=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, float64(25), body["total"])
	assert.Empty(t, body["posts"])

	w = doJSON(t, http.MethodGet, "/api/my-posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileAggregateCounts(t *testing.T) {
	requireDB(t)

	ownerToken, _ := registerUser(t, "Profile Owner", "profile-owner@example.com")
	visitorToken, _ := registerUser(t, "Profile Visitor", "profile-visitor@example.com")

	firstPost := createPost(t, ownerToken, "First", "one")
	createPost(t, ownerToken, "Second", "two")

	w := doJSON(t, http.MethodPost, postPath(firstPost, "/comments"), visitorToken, map[string]string{
		"content": "nice post",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, http.MethodPost, postPath(firstPost, "/reaction"), visitorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, http.MethodGet, "/api/profile", ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Profile Owner", body["name"])
	assert.Equal(t, float64(2), body["post_count"])
	assert.Equal(t, float64(1), body["reaction_count"])
	assert.Equal(t, float64(1), body["comment_count"])
	_, hasPassword := body["password"]
	assert.False(t, hasPassword)
}

func TestMediaUploadStorageAndURLs(t *testing.T) {
	requireDB(t)

	token, _ := registerUser(t, "Uploader", "uploader@example.com")

	w := doMultipart(t, http.MethodPost, "/api/posts", token, map[string]string{
		"title":   "With image",
		"content": "Look at this",
	}, map[string][]byte{
		"image": []byte("fake image bytes"),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	postID := int(body["id"].(float64))
	filename, _ := body["image"].(string)
	require.NotEmpty(t, filename)

	// The record holds only the generated filename; the bytes landed in
	// the upload directory.
	assert.NotContains(t, filename, "/")
	_, err := os.Stat(filepath.Join(testUploadDir, filename))
	require.NoError(t, err)

	// The feed composes an absolute URL from the request's base URL.
	w = doJSON(t, http.MethodGet, "/api/my-posts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	posts := decode(t, w)["posts"].([]interface{})
	require.NotEmpty(t, posts)
	entry := posts[0].(map[string]interface{})
	assert.Equal(t, "http://example.com/uploads/"+filename, entry["image"])
	assert.Nil(t, entry["video"])

	// Deleting the post removes the stored file.
	w = doJSON(t, http.MethodDelete, postPath(postID, ""), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, err = os.Stat(filepath.Join(testUploadDir, filename))
	assert.True(t, os.IsNotExist(err))
}
