// Package translation provides the translation backends (DeepL, Groq, a
// local OpenAI-compatible LLM endpoint and Gemini) behind one Backend
// interface, with provider errors mapped onto a shared taxonomy.
package translation
