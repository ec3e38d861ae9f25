// Package youtube fetches video transcripts through the InnerTube API,
// the JSON backend behind the YouTube web player.
//
// The flow mirrors what the web client does: scrape the watch page for
// the INNERTUBE_API_KEY (falling back to the long-published web client
// key), call /youtubei/v1/next for the video's engagement panels, pull
// the transcript continuation params out of the searchable-transcript
// panel, and call /youtubei/v1/get_transcript for the segment list.
// Segment texts joined with newlines form the transcript.
//
// Transcript always returns a source block; failures become an in-band
// error marker inside it. The base URL is injectable for tests.
package youtube
