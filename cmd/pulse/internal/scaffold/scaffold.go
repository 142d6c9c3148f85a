// Package scaffold generates new Pulse project directories.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pulselang/pulse/cmd/pulse/internal/config"
)

// ProjectConfig holds all configuration for a new project.
type ProjectConfig struct {
	Name      string
	Directory string
	Template  string // "counter" or "todo"
	Runtime   string
	Port      int
	SourceMap bool
	GitInit   bool
}

// Templates lists the available project templates.
var Templates = []string{"counter", "todo"}

// Generate creates the project directory and writes all starter files.
func Generate(cfg *ProjectConfig) error {
	if cfg.Directory == "" {
		cfg.Directory = cfg.Name
	}
	if cfg.Runtime == "" {
		cfg.Runtime = "@pulse/runtime"
	}
	if cfg.Port == 0 {
		cfg.Port = 5173
	}

	for _, dir := range []string{"src", "public"} {
		if err := os.MkdirAll(filepath.Join(cfg.Directory, dir), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := writeConfig(cfg); err != nil {
		return err
	}
	if err := writeComponents(cfg); err != nil {
		return err
	}
	if err := writeIndexHTML(cfg); err != nil {
		return err
	}
	if err := writePackageJSON(cfg); err != nil {
		return err
	}
	if err := writeReadme(cfg); err != nil {
		return err
	}
	return writeGitignore(cfg)
}

func writeConfig(cfg *ProjectConfig) error {
	c := config.DefaultConfig()
	c.Runtime = cfg.Runtime
	c.SourceMap = cfg.SourceMap
	c.Dev.Port = cfg.Port
	return config.Save(c, cfg.Directory)
}

func writeComponents(cfg *ProjectConfig) error {
	var files map[string]string
	switch cfg.Template {
	case "todo":
		files = map[string]string{"todo-list.pulse": todoPulse}
	default:
		files = map[string]string{"counter.pulse": counterPulse}
	}

	for name, content := range files {
		path := filepath.Join(cfg.Directory, "src", name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func writeIndexHTML(cfg *ProjectConfig) error {
	entry := "counter.js"
	mount := "Counter"
	if cfg.Template == "todo" {
		entry = "todo-list.js"
		mount = "TodoList"
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
</head>
<body>
    <div id="app"></div>
    <script type="module">
        import %s from "/dist/%s";
        import { mount } from "%s";
        mount(document.getElementById("app"), %s);
    </script>
</body>
</html>
`, cfg.Name, mount, entry, cfg.Runtime, mount)

	return os.WriteFile(filepath.Join(cfg.Directory, "public", "index.html"), []byte(html), 0644)
}

func writePackageJSON(cfg *ProjectConfig) error {
	content := fmt.Sprintf(`{
  "name": "%s",
  "private": true,
  "type": "module",
  "dependencies": {
    "%s": "^0.1.0"
  }
}
`, cfg.Name, cfg.Runtime)

	return os.WriteFile(filepath.Join(cfg.Directory, "package.json"), []byte(content), 0644)
}

func writeReadme(cfg *ProjectConfig) error {
	content := fmt.Sprintf(`# %s

A Pulse project.

## Development

    pulse dev

Starts the dev server on http://localhost:%d with live reload.

## Build

    pulse build

Compiles src/*.pulse into dist/.
`, cfg.Name, cfg.Port)

	return os.WriteFile(filepath.Join(cfg.Directory, "README.md"), []byte(content), 0644)
}

func writeGitignore(cfg *ProjectConfig) error {
	content := `dist/
node_modules/
*.log
`
	return os.WriteFile(filepath.Join(cfg.Directory, ".gitignore"), []byte(content), 0644)
}

const counterPulse = `page {
  title: "Counter",
}

state {
  count: 0,
}

view {
  div.counter {
    h1 "Count: {count}"
    button type="button" @click(count++) "Increment"
    button type="button" @click(reset()) "Reset"
  }
}

actions {
  reset() {
    count = 0
  }
}

style {
  .counter {
    text-align: center;
    font-family: system-ui, sans-serif;

    button {
      margin: 0 4px;
    }
  }
}
`

const todoPulse = `page {
  title: "Todos",
}

store {
  state {
    items: [],
  }
  getters {
    remaining() {
      return items.filter((t) => !t.done).length
    }
  }
  actions {
    add(title) {
      items = items.concat([{ title: title, done: false }])
    }
    toggle(title) {
      items = items.map((t) => t.title === title ? { title: t.title, done: !t.done } : t)
    }
  }
  persist: true,
  storageKey: "todos",
}

state {
  draft: "",
}

view {
  div.todos {
    form @submit.prevent(submit()) {
      input type="text" placeholder="What needs doing?" @model(draft)
      button type="submit" "Add"
    }
    ul {
      @for (item of items) key(item.title) {
        li {
          label {
            input type="checkbox" checked={item.done} @change(toggle(item.title))
            span "{item.title}"
          }
        }
      }
    }
    p "{remaining} left"
  }
}

actions {
  submit() {
    add(draft)
    draft = ""
  }
}

style {
  .todos {
    max-width: 420px;
    margin: 0 auto;
    font-family: system-ui, sans-serif;

    li {
      list-style: none;
    }
  }
}
`
