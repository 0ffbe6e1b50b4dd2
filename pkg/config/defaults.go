package config

// defaultProfilesYAML holds the built-in site profiles. These selector sets
// are best-effort and expected to break as sites redesign; users override
// them with MAESTRO_PROFILES without rebuilding.
const defaultProfilesYAML = `
profiles:
  - name: soundcloud
    patterns:
      - "soundcloud.com"
      - "*.soundcloud.com"
    selectors:
      play: [".playControls .playControl:not(.playing)"]
      pause: [".playControls .playControl.playing"]
      previous: [".playControls .skipControl__previous"]
      next: [".playControls .skipControl__next"]
      progress: [".playbackTimeline__progressWrapper"]
      volume: [".volume__sliderWrapper input", ".volume__sliderProgress"]
      mute: [".volume__button"]
      title: [".playbackSoundBadge__titleLink"]
      artwork: [".playbackSoundBadge__avatar span"]
      currentClock: [".playbackTimeline__timePassed span[aria-hidden]"]
      durationClock: [".playbackTimeline__duration span[aria-hidden]"]
      metadata: [".playbackSoundBadge"]
  - name: spotify-web
    patterns:
      - "open.spotify.com"
    selectors:
      play: ["[data-testid=control-button-playpause][aria-label=Play]"]
      pause: ["[data-testid=control-button-playpause][aria-label=Pause]"]
      previous: ["[data-testid=control-button-skip-back]"]
      next: ["[data-testid=control-button-skip-forward]"]
      progress: ["[data-testid=playback-progressbar]"]
      volume: ["[data-testid=volume-bar] input[type=range]"]
      mute: ["[data-testid=volume-bar-toggle-mute-button]"]
      title: ["[data-testid=context-item-link]"]
      artwork: ["[data-testid=cover-art-image]"]
      currentClock: ["[data-testid=playback-position]"]
      durationClock: ["[data-testid=playback-duration]"]
      metadata: ["[data-testid=now-playing-widget]"]
  - name: generic-audio-widget
    patterns:
      - "*"
    fallback: true
    selectors:
      play: ["[aria-label=Play i]", "button.play", ".play-button"]
      pause: ["[aria-label=Pause i]", "button.pause", ".pause-button"]
      previous: ["[aria-label*=Previous i]", ".previous-button"]
      next: ["[aria-label*=Next i]", ".next-button"]
      progress: ["input[type=range].progress", "[role=slider][aria-label*=seek i]", ".progress-bar"]
      volume: ["input[type=range].volume", "[role=slider][aria-label*=volume i]"]
      mute: ["[aria-label*=mute i]", ".mute-button"]
      title: [".now-playing .title", ".track-title"]
      artwork: [".now-playing img", ".artwork img"]
      currentClock: [".time-current", ".current-time"]
      durationClock: [".time-total", ".duration"]
      metadata: [".now-playing"]
`
