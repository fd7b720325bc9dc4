package template

// DefaultFileNameFormat names notes after the title.
const DefaultFileNameFormat = "{{Title}}"

// DefaultTemplate is used when no template file is configured for a kind.
const DefaultTemplate = `---
type: {{Type}}
country: {{Country}}
title: {{Title}}
year: {{Year}}
director: {{Director}}
actors: [{{Actors}}]
genre: [{{Genre}}]
length: {{Runtime}}
seen:
rating:
found_at:
trailer_embed: {{YoutubeEmbed}}
poster: "{{Poster}}"
availability:
---
{{Plot}}
`
