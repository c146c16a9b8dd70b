// Package router turns utterances into responses. Skills registered at
// runtime get first refusal; the built-in intents run after them in a
// fixed order, and a small-talk fallback catches everything else.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
	"unicode"

	"github.com/rishavshrivastavarxll-jpg/jervis/internal/conversation"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/encyclopedia"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/media"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/message"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/skill"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/weather"
)

// NoCommandResponse is returned for blank input. Blank input is not a
// turn and leaves the conversation buffer untouched.
const NoCommandResponse = "No command received."

const defaultOwner = "Rishav"

// Encyclopedia answers subject lookups.
type Encyclopedia interface {
	Summary(ctx context.Context, subject string, sentences int) (string, error)
}

// Weather reports current conditions for a city.
type Weather interface {
	Current(ctx context.Context, city string) (*weather.Report, error)
}

// Opener opens a URL or file with the desktop's default handler.
type Opener interface {
	Open(target string) error
}

// wikiTriggers are checked as substrings of the lowercased utterance.
// Any match routes to the encyclopedia before the later intents run,
// so "what is the time" is a lookup for "the time", not a clock query.
var wikiTriggers = []string{"wikipedia", "who is", "what is", "tell me about", "search for"}

var fallbackResponses = []string{
	"I'm not sure about that yet — but I can try to look it up if you want.",
	"Hmm, I don't have an answer for that right now.",
	"Good question — I don't know the answer yet. Want me to search the web for it?",
	"I couldn't find a match in my skills. I can try searching the web if you'd like.",
	"That one's outside my current abilities. I can attempt a web lookup if you say 'search web for ...'.",
	"I don't know the answer, but I can help you find it — try asking 'search web for [topic]'.",
	"I couldn't recognise that command. You can ask me things like 'search for [topic]' or say 'help'.",
}

const fallbackHint = `If you'd like, say: "search for [topic]" or "search web for [topic]".`

const helpResponse = "Here are some things I can do for you:\n" +
	"1. Search Wikipedia — for example, say 'who is Elon Musk' or 'tell me about Python'.\n" +
	"2. Open websites — try 'open YouTube' or 'open Google'.\n" +
	"3. Play videos from your local folder.\n" +
	"4. Tell the current time — say 'what time is it'.\n" +
	"5. Give you weather reports — like 'weather in New York'.\n" +
	"6. Respond politely when you say 'thank you' or 'bye'.\n" +
	"Ask naturally and I'll do my best!"

// Options wires a Router's collaborators. Nil collaborators disable the
// corresponding intent tier gracefully.
type Options struct {
	Skills   *skill.Registry
	History  *conversation.Buffer
	Wiki     Encyclopedia
	Weather  Weather
	Opener   Opener
	Media    *media.Player
	Owner    string
	Sentence int
}

// Router is the interpretation core. Safe for concurrent use as long as
// its collaborators are.
type Router struct {
	skills    *skill.Registry
	history   *conversation.Buffer
	wiki      Encyclopedia
	weather   Weather
	opener    Opener
	media     *media.Player
	owner     string
	sentences int

	now       func() time.Time
	randIndex func(n int) int
}

func New(opts Options) *Router {
	if opts.Owner == "" {
		opts.Owner = defaultOwner
	}
	if opts.Sentence <= 0 {
		opts.Sentence = 3
	}
	if opts.History == nil {
		opts.History = conversation.New()
	}
	return &Router{
		skills:    opts.Skills,
		history:   opts.History,
		wiki:      opts.Wiki,
		weather:   opts.Weather,
		opener:    opts.Opener,
		media:     opts.Media,
		owner:     opts.Owner,
		sentences: opts.Sentence,
		now:       time.Now,
		randIndex: rand.IntN,
	}
}

// History exposes the conversation buffer backing this router.
func (r *Router) History() *conversation.Buffer { return r.history }

// Process interprets one utterance and records the exchange in the
// conversation buffer.
func (r *Router) Process(ctx context.Context, u message.Utterance) message.Result {
	text := strings.TrimSpace(u.Text)
	if text == "" {
		return message.Result{Command: u.Text, Response: NoCommandResponse}
	}

	r.history.Push(conversation.RoleUser, u.Text)
	snapshot := r.history.Snapshot()

	response := r.interpret(ctx, text, snapshot)
	r.history.Push(conversation.RoleAssistant, response)

	slog.Debug("utterance interpreted", "source", u.Source, "command", text)
	return message.Result{Command: u.Text, Response: response}
}

// Greeting returns the time-of-day salutation used when a session opens.
func (r *Router) Greeting() string {
	var salutation string
	switch hour := r.now().Hour(); {
	case hour < 12:
		salutation = "Good Morning"
	case hour < 18:
		salutation = "Good Afternoon"
	default:
		salutation = "Good Evening"
	}
	return fmt.Sprintf("%s %s! I am your assistant. How may I help you?", salutation, r.owner)
}

func (r *Router) interpret(ctx context.Context, text, snapshot string) string {
	query := strings.ToLower(strings.TrimSpace(text))

	if r.skills != nil {
		if handled, response := r.skills.Dispatch(query, snapshot); handled {
			return response
		}
	}

	switch {
	case containsAny(query, wikiTriggers...):
		return r.lookup(ctx, query)
	case strings.Contains(query, "open youtube"):
		return r.open("https://www.youtube.com/", "Opening YouTube in your default browser.")
	case strings.Contains(query, "open google"):
		return r.open("https://www.google.com/", "Opening Google in your default browser.")
	case strings.Contains(query, "video"):
		return r.playVideo()
	case strings.Contains(query, "time"):
		return "Sir, The Time is " + r.now().Format("03:04:05 PM")
	case strings.Contains(query, "weather"):
		return r.weatherReport(ctx, query)
	case strings.Contains(query, "what can you do"),
		strings.Contains(query, "help"),
		strings.Contains(query, "commands"):
		return helpResponse
	case strings.Contains(query, "thank you"),
		strings.Contains(query, "bye"),
		strings.Contains(query, "stop"):
		return fmt.Sprintf("You're welcome! Goodbye, %s.", r.owner)
	default:
		return fallbackResponses[r.randIndex(len(fallbackResponses))] + " " + fallbackHint
	}
}

// lookup strips the trigger phrase that matched and sends the remainder
// to the encyclopedia.
func (r *Router) lookup(ctx context.Context, query string) string {
	subject := query
	for _, trigger := range wikiTriggers {
		if strings.Contains(subject, trigger) {
			subject = strings.ReplaceAll(subject, trigger, "")
			break
		}
	}
	subject = strings.TrimSpace(subject)
	if len(subject) < 2 {
		return "Please tell me what subject you would like me to search for."
	}

	if r.wiki == nil {
		return "An error occurred while searching Wikipedia."
	}

	summary, err := r.wiki.Summary(ctx, subject, r.sentences)
	if err == nil {
		return "According to Wikipedia: " + summary
	}

	var disambig *encyclopedia.DisambiguationError
	switch {
	case errors.Is(err, encyclopedia.ErrNotFound):
		return fmt.Sprintf("Sorry, I could not find a Wikipedia page for %s.", subject)
	case errors.As(err, &disambig):
		suggestion := "a different query"
		if len(disambig.Options) > 0 {
			suggestion = disambig.Options[0]
		}
		return "I found multiple results. Try searching for: " + suggestion
	default:
		slog.Error("wikipedia lookup failed", "subject", subject, "error", err)
		return "An error occurred while searching Wikipedia."
	}
}

func (r *Router) open(url, confirmation string) string {
	if r.opener == nil {
		return "An error occurred while opening the browser."
	}
	if err := r.opener.Open(url); err != nil {
		slog.Error("browser launch failed", "url", url, "error", err)
		return "An error occurred while opening the browser."
	}
	return confirmation
}

func (r *Router) playVideo() string {
	if r.media == nil {
		return "The video directory '' was not found. Please check the path."
	}
	_, err := r.media.PlayRandom()
	switch {
	case errors.Is(err, media.ErrNoDirectory):
		return fmt.Sprintf("The video directory '%s' was not found. Please check the path.", r.media.Dir())
	case errors.Is(err, media.ErrEmpty):
		return fmt.Sprintf("No videos found in the directory: %s", r.media.Dir())
	case err != nil:
		return fmt.Sprintf("An error occurred while trying to play the video: %v", err)
	}
	return fmt.Sprintf("Playing a random video from %s.", r.media.Dir())
}

func (r *Router) weatherReport(ctx context.Context, query string) string {
	city := cityFromQuery(query)
	if city == "" {
		return "Please specify the city for the weather report (e.g., 'weather in New York')."
	}
	if r.weather == nil {
		return "I had trouble connecting to the weather service. Please check your network connection."
	}

	report, err := r.weather.Current(ctx, city)
	if err != nil {
		var nf *weather.NotFoundError
		if errors.As(err, &nf) {
			return fmt.Sprintf("Sorry, I couldn't find the weather for %s. %s", city, nf.Message)
		}
		slog.Error("weather request failed", "city", city, "error", err)
		return "I had trouble connecting to the weather service. Please check your network connection."
	}

	return fmt.Sprintf(
		"The weather in %s is currently %s with a temperature of %.1f degrees Celsius. Humidity is %d percent.",
		titleCase(city), report.Description, report.TempC, report.Humidity,
	)
}

// cityFromQuery extracts the city from phrasings like "weather in
// london" or "weather of paris". The keyword match is a plain substring
// split, which keeps multi-word city names intact. Without a keyword
// the last word is assumed to be the city.
func cityFromQuery(query string) string {
	for _, keyword := range []string{"in", "of"} {
		if _, after, ok := strings.Cut(query, keyword); ok {
			if city := strings.TrimSpace(after); city != "" {
				return city
			}
		}
	}
	fields := strings.Fields(query)
	if len(fields) >= 2 {
		return fields[len(fields)-1]
	}
	return ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		runes := []rune(f)
		runes[0] = unicode.ToUpper(runes[0])
		fields[i] = string(runes)
	}
	return strings.Join(fields, " ")
}
