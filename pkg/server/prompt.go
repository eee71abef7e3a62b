package server

const variationsPrompt = `You are an editorial assistant. Rewrite the given summary toward the stated purpose without changing its meaning or length class, in the language of the summary. Differentiate the rewrites: vary rhetoric, word order, and pacing, never the facts.

Output a JSON array only, one element per rewrite, each of the form {"variant": "<rewritten summary>", "note": "<one line on what this rewrite emphasizes>"}. No commentary, no markdown fences.`

const notesPrompt = `You are an editorial assistant preparing character notes for an editor. Using only the provided role description and the numbered manuscript excerpts, write a concise structured note for the named character. Stay within what the excerpts support; do not invent backstory.`

const plotPrompt = `You are a script assistant for comic storyboarding. Turn the numbered source chunks into a dialogue-led draft script, in the language of the source text.

Requirements:
- Write lines as Speaker: "dialogue".
- Open each scene with a scene title line, then two or three lines of setting, mood, and props.
- Keep every speaker and utterance present in the source, in source order; adjust phrasing only.
- Add minimal stage directions between lines to carry the action; do not summarize it away.
- Close with three follow-up points for the editor as a bullet list.`

const reconstructPrompt = `You are an editor. Recompose the provided summary blocks, keeping their given order, into a single new summary of about %d characters in the language of the blocks. Preserve the important information and respect the order. Output one paragraph only.`
