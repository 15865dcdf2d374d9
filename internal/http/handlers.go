package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/sujalbistaa/postboard/internal/auth"
	"github.com/sujalbistaa/postboard/internal/events"
	"github.com/sujalbistaa/postboard/internal/models"
	"github.com/sujalbistaa/postboard/internal/store"
	"github.com/sujalbistaa/postboard/internal/upload"
)

const profileEventLimit = 20

// --- Structs for form binding ---
type LoginInput struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type RegisterInput struct {
	Username string `form:"username" binding:"required,max=80"`
	Email    string `form:"email" binding:"required,email,max=120"`
	Password string `form:"password" binding:"required,min=3,max=72"`
}

type CreatePostInput struct {
	Title   string `form:"title" binding:"required,max=120"`
	Content string `form:"content" binding:"required"`
}

type CreateCommentInput struct {
	Content string `form:"content" binding:"required,max=2000"`
}

func (in *LoginInput) trim() { in.Email = strings.TrimSpace(in.Email) }

func (in *RegisterInput) trim() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
}

func (in *CreatePostInput) trim() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
}

func (in *CreateCommentInput) trim() { in.Content = strings.TrimSpace(in.Content) }

type trimmable interface {
	trim()
}

// bindForm binds the request, trims surrounding whitespace from text fields
// and validates again so blank values fail "required".
func bindForm(c *gin.Context, input trimmable) error {
	if err := c.ShouldBind(input); err != nil {
		return err
	}
	input.trim()
	return binding.Validator.ValidateStruct(input)
}

// --- Handlers ---
type Env struct {
	Store          *store.Store
	Auth           *auth.Manager
	Events         *events.Logger
	Uploads        *upload.Uploader
	MaxUploadBytes int64
}

func (e *Env) Index(c *gin.Context) {
	e.renderPosts(c, "index.html", "")
}

func (e *Env) AllPosts(c *gin.Context) {
	e.renderPosts(c, "allposts.html", "All posts")
}

func (e *Env) renderPosts(c *gin.Context, page, title string) {
	posts, err := e.Store.ListPosts(c.Request.Context())
	if err != nil {
		log.Printf("Error fetching posts: %v", err)
		c.String(http.StatusInternalServerError, "Failed to fetch posts")
		return
	}
	render(c, http.StatusOK, page, gin.H{"Title": title, "Posts": posts})
}

func (e *Env) LoginForm(c *gin.Context) {
	render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in", "Email": ""})
}

func (e *Env) Login(c *gin.Context) {
	var input LoginInput
	if err := bindForm(c, &input); err != nil {
		render(c, http.StatusBadRequest, "login.html", gin.H{"Title": "Log in", "Email": input.Email},
			Flash{flashDanger, "Email and password are required."})
		return
	}

	user, err := e.Auth.Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			render(c, http.StatusUnauthorized, "login.html", gin.H{"Title": "Log in", "Email": input.Email},
				Flash{flashDanger, "Incorrect email or password."})
			return
		}
		log.Printf("Error authenticating user: %v", err)
		render(c, http.StatusInternalServerError, "login.html", gin.H{"Title": "Log in", "Email": input.Email},
			Flash{flashDanger, "Something went wrong, please try again."})
		return
	}

	auth.EstablishSession(c, user.ID)
	e.Events.Log(c.Request.Context(), user.ID, models.EventLogin, "")
	redirect(c, "/", flashSuccess, "Logged in successfully!")
}

func (e *Env) RegisterForm(c *gin.Context) {
	render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Username": "", "Email": ""})
}

func (e *Env) Register(c *gin.Context) {
	var input RegisterInput
	err := bindForm(c, &input)
	data := gin.H{"Title": "Register", "Username": input.Username, "Email": input.Email}
	if err != nil {
		render(c, http.StatusBadRequest, "register.html", data,
			Flash{flashDanger, "Please provide a username, a valid email and a password."})
		return
	}

	user, err := e.Auth.Register(c.Request.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBlankField) {
			render(c, http.StatusBadRequest, "register.html", data,
				Flash{flashDanger, "Please provide a username, a valid email and a password."})
			return
		}
		if errors.Is(err, store.ErrDuplicate) {
			render(c, http.StatusConflict, "register.html", data,
				Flash{flashDanger, "That username or email is already taken."})
			return
		}
		log.Printf("Error registering user: %v", err)
		render(c, http.StatusInternalServerError, "register.html", data,
			Flash{flashDanger, "Registration failed, please try again."})
		return
	}

	e.Events.Log(c.Request.Context(), user.ID, models.EventRegister, "")
	redirect(c, "/login", flashSuccess, "Registered successfully!")
}

func (e *Env) Logout(c *gin.Context) {
	if userID, ok := auth.CurrentUserID(c); ok {
		e.Events.Log(c.Request.Context(), userID, models.EventLogout, "")
		auth.ClearSession(c)
	}
	redirect(c, "/", flashSuccess, "Logged out successfully!")
}

func (e *Env) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	userID := sessionUserID(c)

	user, err := e.Store.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			auth.ClearSession(c)
			redirect(c, "/", flashDanger, "User not found!")
			return
		}
		log.Printf("Error fetching user %d: %v", userID, err)
		c.String(http.StatusInternalServerError, "Failed to load profile")
		return
	}

	posts, err := e.Store.PostsByUser(ctx, userID)
	if err != nil {
		log.Printf("Error fetching posts for user %d: %v", userID, err)
		c.String(http.StatusInternalServerError, "Failed to load profile")
		return
	}
	evts, err := e.Store.EventsByUser(ctx, userID, profileEventLimit)
	if err != nil {
		log.Printf("Error fetching events for user %d: %v", userID, err)
		c.String(http.StatusInternalServerError, "Failed to load profile")
		return
	}

	render(c, http.StatusOK, "profile.html", gin.H{
		"Title":  user.Username,
		"User":   user,
		"Posts":  posts,
		"Events": evts,
	})
}

func (e *Env) AddPostForm(c *gin.Context) {
	render(c, http.StatusOK, "addpost.html", gin.H{"Title": "New post", "PostTitle": "", "Content": ""})
}

func (e *Env) AddPost(c *gin.Context) {
	ctx := c.Request.Context()
	userID := sessionUserID(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, e.MaxUploadBytes)

	var input CreatePostInput
	err := bindForm(c, &input)
	data := gin.H{"Title": "New post", "PostTitle": input.Title, "Content": input.Content}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			render(c, http.StatusRequestEntityTooLarge, "addpost.html", data,
				Flash{flashDanger, "The attachment is too large."})
			return
		}
		render(c, http.StatusBadRequest, "addpost.html", data,
			Flash{flashDanger, "Title and content are required."})
		return
	}

	post := models.Post{UserID: userID, Title: input.Title, Content: input.Content}

	fh, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		render(c, http.StatusBadRequest, "addpost.html", data,
			Flash{flashDanger, "Could not read the attached file."})
		return
	case fh.Filename != "":
		name, err := e.Uploads.Save(c, fh)
		if err != nil {
			log.Printf("Error saving upload: %v", err)
			render(c, http.StatusInternalServerError, "addpost.html", data,
				Flash{flashDanger, "Could not save the attached file."})
			return
		}
		post.FileURL = &name
	}

	if err := e.Store.CreatePost(ctx, &post); err != nil {
		log.Printf("Error creating post: %v", err)
		if post.FileURL != nil {
			if rmErr := e.Uploads.Remove(*post.FileURL); rmErr != nil {
				log.Printf("Error removing orphaned upload %q: %v", *post.FileURL, rmErr)
			}
		}
		render(c, http.StatusInternalServerError, "addpost.html", data,
			Flash{flashDanger, "Failed to create post."})
		return
	}

	e.Events.Log(ctx, userID, models.EventCreatePost, fmt.Sprintf("Post ID: %d", post.ID))
	redirect(c, "/allposts", flashSuccess, "Post published successfully!")
}

func (e *Env) ShowPost(c *gin.Context) {
	ctx := c.Request.Context()

	postID, ok := parseID(c)
	if !ok {
		redirect(c, "/", flashDanger, "Post not found!")
		return
	}

	post, err := e.Store.PostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			redirect(c, "/", flashDanger, "Post not found!")
			return
		}
		log.Printf("Error fetching post %d: %v", postID, err)
		c.String(http.StatusInternalServerError, "Failed to fetch post")
		return
	}

	comments, err := e.Store.CommentsByPost(ctx, postID)
	if err != nil {
		log.Printf("Error fetching comments for post %d: %v", postID, err)
		c.String(http.StatusInternalServerError, "Failed to fetch post")
		return
	}

	render(c, http.StatusOK, "post.html", gin.H{"Title": post.Title, "Post": post, "Comments": comments})
}

func (e *Env) AddComment(c *gin.Context) {
	ctx := c.Request.Context()
	userID := sessionUserID(c)

	postID, ok := parseID(c)
	if !ok {
		redirect(c, "/", flashDanger, "Post not found!")
		return
	}
	postURL := "/posts/" + strconv.FormatUint(uint64(postID), 10)

	var input CreateCommentInput
	if err := bindForm(c, &input); err != nil {
		redirect(c, postURL, flashDanger, "Comment cannot be empty.")
		return
	}

	comment := models.Comment{UserID: userID, PostID: postID, Content: input.Content}
	if err := e.Store.CreateComment(ctx, &comment); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			redirect(c, "/", flashDanger, "Post not found!")
			return
		}
		log.Printf("Error creating comment: %v", err)
		redirect(c, postURL, flashDanger, "Failed to add comment.")
		return
	}

	e.Events.Log(ctx, userID, models.EventCreateComment, fmt.Sprintf("Comment ID: %d", comment.ID))
	redirect(c, postURL, flashSuccess, "Comment added!")
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
