package help

const ColdstartYAML = `# cinii Quick Start

page_types:
  journalArticle: "/crid/<digits> page whose JSON-LD is a ScholarlyArticle"
  book: "/crid/<digits> page whose JSON-LD is a Book"
  multiple: "Search listing (body class result_list)"
  none: "Anything else; nothing is imported"

commands:
  classify: |
    cinii detect "https://cir.nii.ac.jp/crid/1390001204062164736"

  list_results: |
    cinii search "https://cir.nii.ac.jp/all?q=transformer"

  import_record: |
    cinii fetch "https://cir.nii.ac.jp/crid/1390001204062164736"

  import_selected: |
    cinii fetch --select 1,3-5 "https://cir.nii.ac.jp/all?q=transformer"

  import_interactive: |
    cinii fetch "https://cir.nii.ac.jp/all?q=transformer"   # space toggles, enter imports, q cancels

  save_to_library: |
    cinii --db library.db fetch --all -o items.yaml --manifest run.yaml "https://cir.nii.ac.jp/all?q=transformer"

  import_file: |
    cinii --format json import export.ris

  browse_library: |
    cinii --db library.db library list --limit 20

config_file: |
  host: cir.nii.ac.jp
  user_agent: "cinii-translator/1.0"
  timeout: 30s
  format: yaml
  db_path: library.db

notes:
  - "Items go to stdout; logs are JSON on stderr (--quiet for errors only)"
  - "A failing record stops a batch; records already imported are kept"
`
