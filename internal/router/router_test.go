package router

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishavshrivastavarxll-jpg/jervis/internal/conversation"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/encyclopedia"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/media"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/message"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/skill"
	"github.com/rishavshrivastavarxll-jpg/jervis/internal/weather"
)

type fakeWiki struct {
	summary  string
	err      error
	subjects []string
}

func (f *fakeWiki) Summary(_ context.Context, subject string, _ int) (string, error) {
	f.subjects = append(f.subjects, subject)
	return f.summary, f.err
}

type fakeWeather struct {
	report *weather.Report
	err    error
	cities []string
}

func (f *fakeWeather) Current(_ context.Context, city string) (*weather.Report, error) {
	f.cities = append(f.cities, city)
	return f.report, f.err
}

type fakeOpener struct {
	opened []string
	err    error
}

func (f *fakeOpener) Open(target string) error {
	f.opened = append(f.opened, target)
	return f.err
}

type stubSkill struct {
	name     string
	matches  string
	response string
	err      error
}

func (s *stubSkill) Name() string { return s.name }

func (s *stubSkill) CanHandle(utterance string) bool {
	return s.matches != "" && utterance == s.matches
}

func (s *stubSkill) Handle(_, _ string) (string, error) {
	return s.response, s.err
}

func newTestRouter(opts Options) *Router {
	r := New(opts)
	r.now = func() time.Time {
		return time.Date(2024, 5, 1, 15, 4, 5, 0, time.UTC)
	}
	r.randIndex = func(int) int { return 0 }
	return r
}

func process(r *Router, text string) string {
	return r.Process(context.Background(), message.Typed(text)).Response
}

func TestProcessEmptyInput(t *testing.T) {
	history := conversation.New()
	r := newTestRouter(Options{History: history})

	res := r.Process(context.Background(), message.Typed("   "))
	assert.Equal(t, NoCommandResponse, res.Response)
	assert.Equal(t, 0, history.Len())
}

func TestProcessRecordsBothTurns(t *testing.T) {
	history := conversation.New()
	r := newTestRouter(Options{History: history})

	process(r, "what time is it")
	assert.Equal(t, 2, history.Len())
	assert.Equal(t, "user: what time is it | assistant: Sir, The Time is 03:04:05 PM", history.Snapshot())
}

func TestSkillsRunBeforeBuiltins(t *testing.T) {
	reg := skill.NewRegistry(0)
	reg.Register(&stubSkill{name: "clock", matches: "what time is it", response: "skill time"})
	r := newTestRouter(Options{Skills: reg})

	assert.Equal(t, "skill time", process(r, "what time is it"))
}

func TestFirstMatchingSkillWins(t *testing.T) {
	reg := skill.NewRegistry(0)
	reg.Register(&stubSkill{name: "first", matches: "ping", response: "from first"})
	reg.Register(&stubSkill{name: "second", matches: "ping", response: "from second"})
	r := newTestRouter(Options{Skills: reg})

	assert.Equal(t, "from first", process(r, "ping"))
}

func TestSkillErrorIsTerminal(t *testing.T) {
	reg := skill.NewRegistry(0)
	reg.Register(&stubSkill{name: "broken", matches: "what time is it", err: errors.New("boom")})
	r := newTestRouter(Options{Skills: reg})

	// The failure response is final; the time intent must not run.
	assert.Equal(t, skill.FailureResponse, process(r, "what time is it"))
}

func TestWikiTriggerOutranksTime(t *testing.T) {
	wiki := &fakeWiki{summary: "Time is a concept."}
	r := newTestRouter(Options{Wiki: wiki})

	res := process(r, "what is the time")
	assert.Equal(t, "According to Wikipedia: Time is a concept.", res)
	require.Len(t, wiki.subjects, 1)
	assert.Equal(t, "the time", wiki.subjects[0])
}

func TestWikiSubjectTooShort(t *testing.T) {
	wiki := &fakeWiki{}
	r := newTestRouter(Options{Wiki: wiki})

	res := process(r, "search for")
	assert.Equal(t, "Please tell me what subject you would like me to search for.", res)
	assert.Empty(t, wiki.subjects)
}

func TestWikiNotFound(t *testing.T) {
	r := newTestRouter(Options{Wiki: &fakeWiki{err: encyclopedia.ErrNotFound}})

	res := process(r, "who is zanzibar mcgee")
	assert.Equal(t, "Sorry, I could not find a Wikipedia page for zanzibar mcgee.", res)
}

func TestWikiDisambiguation(t *testing.T) {
	err := &encyclopedia.DisambiguationError{Options: []string{"Mercury (planet)", "Mercury (element)"}}
	r := newTestRouter(Options{Wiki: &fakeWiki{err: err}})

	res := process(r, "tell me about mercury")
	assert.Equal(t, "I found multiple results. Try searching for: Mercury (planet)", res)
}

func TestWikiDisambiguationNoOptions(t *testing.T) {
	r := newTestRouter(Options{Wiki: &fakeWiki{err: &encyclopedia.DisambiguationError{}}})

	res := process(r, "tell me about mercury")
	assert.Equal(t, "I found multiple results. Try searching for: a different query", res)
}

func TestOpenYouTube(t *testing.T) {
	opener := &fakeOpener{}
	r := newTestRouter(Options{Opener: opener})

	res := process(r, "open youtube please")
	assert.Equal(t, "Opening YouTube in your default browser.", res)
	assert.Equal(t, []string{"https://www.youtube.com/"}, opener.opened)
}

func TestOpenGoogle(t *testing.T) {
	opener := &fakeOpener{}
	r := newTestRouter(Options{Opener: opener})

	res := process(r, "open google")
	assert.Equal(t, "Opening Google in your default browser.", res)
	assert.Equal(t, []string{"https://www.google.com/"}, opener.opened)
}

func TestTimeFormat(t *testing.T) {
	r := newTestRouter(Options{})
	assert.Equal(t, "Sir, The Time is 03:04:05 PM", process(r, "time please"))
}

func TestWeatherReport(t *testing.T) {
	w := &fakeWeather{report: &weather.Report{Description: "clear sky", TempC: 18.3, Humidity: 40}}
	r := newTestRouter(Options{Weather: w})

	res := process(r, "weather in new york")
	assert.Equal(t, "The weather in New York is currently clear sky with a temperature of 18.3 degrees Celsius. Humidity is 40 percent.", res)
	assert.Equal(t, []string{"new york"}, w.cities)
}

func TestWeatherCityNotFound(t *testing.T) {
	w := &fakeWeather{err: &weather.NotFoundError{Message: "city not found"}}
	r := newTestRouter(Options{Weather: w})

	res := process(r, "weather in atlantis")
	assert.Equal(t, "Sorry, I couldn't find the weather for atlantis. city not found", res)
}

func TestWeatherUnreachable(t *testing.T) {
	w := &fakeWeather{err: weather.ErrUnreachable}
	r := newTestRouter(Options{Weather: w})

	res := process(r, "weather in london")
	assert.Equal(t, "I had trouble connecting to the weather service. Please check your network connection.", res)
}

func TestWeatherNoCity(t *testing.T) {
	w := &fakeWeather{}
	r := newTestRouter(Options{Weather: w})

	res := process(r, "weather")
	assert.Equal(t, "Please specify the city for the weather report (e.g., 'weather in New York').", res)
	assert.Empty(t, w.cities)
}

func TestWeatherLastWordFallback(t *testing.T) {
	w := &fakeWeather{report: &weather.Report{Description: "mist", TempC: 7, Humidity: 90}}
	r := newTestRouter(Options{Weather: w})

	process(r, "weather london")
	assert.Equal(t, []string{"london"}, w.cities)
}

func TestPlayVideo(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("x"), 0o644))
	opener := &fakeOpener{}
	r := newTestRouter(Options{Media: media.NewPlayer(dir, opener, false)})

	res := process(r, "play a video")
	assert.Equal(t, "Playing a random video from "+dir+".", res)
	assert.Equal(t, []string{filepath.Join(dir, "clip.mp4")}, opener.opened)
}

func TestPlayVideoMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nope")
	r := newTestRouter(Options{Media: media.NewPlayer(dir, &fakeOpener{}, false)})

	res := process(r, "play a video")
	assert.Equal(t, "The video directory '"+dir+"' was not found. Please check the path.", res)
}

func TestPlayVideoEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	r := newTestRouter(Options{Media: media.NewPlayer(dir, &fakeOpener{}, false)})

	res := process(r, "play a video")
	assert.Equal(t, "No videos found in the directory: "+dir, res)
}

func TestHelp(t *testing.T) {
	r := newTestRouter(Options{})
	assert.Equal(t, helpResponse, process(r, "what can you do"))
}

func TestGoodbye(t *testing.T) {
	r := newTestRouter(Options{Owner: "Rishav"})
	assert.Equal(t, "You're welcome! Goodbye, Rishav.", process(r, "thank you"))
}

func TestFallback(t *testing.T) {
	r := newTestRouter(Options{})
	res := process(r, "fry an egg")
	assert.Equal(t, fallbackResponses[0]+" "+fallbackHint, res)
}

func TestGreeting(t *testing.T) {
	r := newTestRouter(Options{Owner: "Rishav"})
	assert.Equal(t, "Good Afternoon Rishav! I am your assistant. How may I help you?", r.Greeting())
}
